package solat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"empty table", fmt.Errorf("resolve SGR01 2025-09-05: %w", timetable.ErrEmptyTable), "TBL001"},
		{"date column missing", timetable.ErrDateColumnMissing, "TBL002"},
		{"table too large", source.ErrTableTooLarge, "TBL003"},
		{"table not found", fmt.Errorf("load: %w", source.ErrTableNotFound), "SRC001"},
		{"api status", source.ErrAPIStatus, "SRC002"},
		{"bad response", source.ErrBadResponse, "SRC003"},
		{"connection refused", errors.New("dial tcp 1.2.3.4:443: connect: connection refused"), "SRC004"},
		{"dns failure", errors.New("dial tcp: lookup www.e-solat.gov.my: no such host"), "SRC004"},
		{"invalid range before invalid date", source.ErrInvalidRange, "VAL001"},
		{"invalid date", ErrInvalidDate, "VAL002"},
		{"unknown zone", ErrUnknownZone, "ZONE001"},
		{"cancelled", context.Canceled, "REQ001"},
		{"deadline", context.DeadlineExceeded, "REQ002"},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), "REQ002"},
		{"bad body", errors.New("invalid request body: unexpected EOF"), "REQ003"},
		{"disabled", errors.New("endpoint disabled: lookup log"), "REQ004"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrUnknownZone)
	want := "Unknown zone (Code: ZONE001). List valid codes with GET /api/zones or solat zones"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(source.ErrTableNotFound) {
		t.Error("table not found should be user facing")
	}
	if IsUserFacing(errors.New("xyz")) {
		t.Error("unknown errors should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should be nil")
	}

	tech := fmt.Errorf("resolve: %w", timetable.ErrEmptyTable)
	ue := NewUserError(tech)
	if ue.Error() != "The timetable is empty" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, timetable.ErrEmptyTable) {
		t.Error("Unwrap should expose the technical error")
	}
}
