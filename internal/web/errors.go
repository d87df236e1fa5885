package web

// errors.go maps failures to HTTP responses.
//
// Every error is logged with its technical detail and the request id, then
// written to the client as the user message from solat.MapError:
//
//	{"error": "...", "message": "...", "action": "...", "code": "SRC001"}

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errDisabled    = errors.New("endpoint disabled")
	errBadRequest  = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user message with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := solat.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor picks the HTTP status for a resolution or fetch error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, solat.ErrUnknownZone),
		errors.Is(err, solat.ErrInvalidDate),
		errors.Is(err, source.ErrInvalidRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, timetable.ErrEmptyTable),
		errors.Is(err, timetable.ErrDateColumnMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
