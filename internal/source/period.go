package source

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is the span of days a published timetable covers.
type Period string

const (
	PeriodWeek     Period = "week"
	PeriodMonth    Period = "month"
	PeriodYear     Period = "year"
	PeriodDuration Period = "duration"
)

// Periods lists every recognised period in the order they are tried when
// looking for a table on disk.
var Periods = []Period{PeriodMonth, PeriodWeek, PeriodYear, PeriodDuration}

// ErrInvalidRange is returned when a duration request lacks a usable start or end date.
var ErrInvalidRange = errors.New("invalid date range")

// dateLayout is the canonical YYYY-MM-DD layout.
const dateLayout = "2006-01-02"

// ParsePeriod converts a configuration or flag value to a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown period %q (want week, month, year or duration)", s)
	}
	return p, nil
}

// Valid reports whether p is one of the recognised periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodDuration:
		return true
	}
	return false
}

func (p Period) String() string {
	return string(p)
}

// ValidateRange checks the start and end dates of a duration request.
// Other periods ignore both values.
func ValidateRange(period Period, start, end string) error {
	if period != PeriodDuration {
		return nil
	}

	var parsed [2]time.Time
	for i, v := range []struct{ name, value string }{{"start", start}, {"end", end}} {
		if v.value == "" {
			return fmt.Errorf("%w: --%s is required for period=duration", ErrInvalidRange, v.name)
		}
		t, err := time.Parse(dateLayout, v.value)
		if err != nil {
			return fmt.Errorf("%w: --%s must be YYYY-MM-DD (got %q)", ErrInvalidRange, v.name, v.value)
		}
		parsed[i] = t
	}

	if parsed[1].Before(parsed[0]) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end, start)
	}
	return nil
}

// MonthBounds returns the first and last day of day's month as YYYY-MM-DD.
func MonthBounds(day time.Time) (string, string) {
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout)
}
