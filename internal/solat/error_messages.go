package solat

// error_messages.go maps technical errors to messages for API clients and
// CLI users. Each message carries a code that can be quoted in bug reports.
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Empty table: The timetable file has no content
//	         Patterns: "empty table"
//	TBL002 - No date column: No column could be identified as the date
//	         Patterns: "date column not found"
//	TBL003 - Table too large: The timetable file is too large to read
//	         Patterns: "table file too large"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Not found: No timetable covers this zone and date
//	         Patterns: "timetable not found"
//	SRC002 - API error: The e-solat service reported an error
//	         Patterns: "e-solat api error"
//	SRC003 - Bad response: The e-solat service returned an unexpected document
//	         Patterns: "malformed e-solat response"
//	SRC004 - Unreachable: The timetable source could not be reached
//	         Patterns: "connection refused", "no such host"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid range: The start or end date of a duration is invalid
//	         Patterns: "invalid date range"
//	VAL002 - Invalid date: The date could not be recognised
//	         Patterns: "invalid date"
//
// # Zone Errors (ZONE001-ZONE099)
//
//	ZONE001 - Unknown zone: The zone code is not a known JAKIM zone
//	          Patterns: "unknown zone"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Cancelled: "context canceled"
//	REQ002 - Timed out: "deadline exceeded", "timeout"
//	REQ003 - Bad request: "invalid request body"
//	REQ004 - Disabled: "endpoint disabled"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests: "rate limit"
//
// # Default (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is the client-facing description of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Table
	{
		pattern: "empty table",
		msg: UserMessage{
			Message: "The timetable is empty",
			Action:  "Re-download the timetable for this zone",
			Code:    "TBL001",
		},
	},
	{
		pattern: "date column not found",
		msg: UserMessage{
			Message: "The timetable has no recognisable date column",
			Action:  "Name the date column Date or Tarikh",
			Code:    "TBL002",
		},
	},
	{
		pattern: "table file too large",
		msg: UserMessage{
			Message: "The timetable file is too large",
			Action:  "Fetch a shorter period",
			Code:    "TBL003",
		},
	},

	// Source
	{
		pattern: "timetable not found",
		msg: UserMessage{
			Message: "No timetable covers this zone and date",
			Action:  "Run solat fetch for the month, or enable the API source",
			Code:    "SRC001",
		},
	},
	{
		pattern: "e-solat api error",
		msg: UserMessage{
			Message: "The e-solat service reported an error",
			Action:  "Check the zone code and try again later",
			Code:    "SRC002",
		},
	},
	{
		pattern: "malformed e-solat response",
		msg: UserMessage{
			Message: "The e-solat service returned an unexpected response",
			Action:  "Try again later",
			Code:    "SRC003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The timetable source could not be reached",
			Action:  "Check network access and try again",
			Code:    "SRC004",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The timetable source could not be reached",
			Action:  "Check network access and try again",
			Code:    "SRC004",
		},
	},

	// Validation
	{
		pattern: "invalid date range",
		msg: UserMessage{
			Message: "The date range is invalid",
			Action:  "Give --start and --end as YYYY-MM-DD with start before end",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "The date could not be recognised",
			Action:  "Use YYYY-MM-DD, DD-MMM-YYYY, D/M/YYYY or Sep 5, 2025",
			Code:    "VAL002",
		},
	},

	// Zone
	{
		pattern: "unknown zone",
		msg: UserMessage{
			Message: "Unknown zone",
			Action:  "List valid codes with GET /api/zones or solat zones",
			Code:    "ZONE001",
		},
	},

	// Request
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},

	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request parameters and try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "endpoint disabled",
		msg: UserMessage{
			Message: "This feature is not enabled on the server",
			Action:  "Configure DATABASE_URL or SOLAT_USE_API and restart",
			Code:    "REQ004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the server logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a UserMessage. Unknown errors map
// to ERR000; nil maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
