package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
)

type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var (
	errMissingKey = authError{
		Error:   "missing API key",
		Message: "missing API key",
		Action:  "Send the key in the X-API-Key header",
		Code:    "AUTH001",
	}
	errInvalidKey = authError{
		Error:   "invalid API key",
		Message: "invalid API key",
		Action:  "Check the key against API_KEYS",
		Code:    "AUTH002",
	}
)

// APIKeyAuth guards operator endpoints with the X-API-Key header.
// With RequireAPIKey off every request passes.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			switch {
			case key == "":
				reject(w, r, http.StatusUnauthorized, errMissingKey)
			case !validAPIKey(key, cfg.APIKeys):
				reject(w, r, http.StatusForbidden, errInvalidKey)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, status int, body authError) {
	slog.Warn("auth: request rejected",
		"reason", body.Error,
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// validAPIKey compares key against every configured key in constant time.
func validAPIKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}
