package timetable

// dates.go normalizes the date strings found in source tables.
//
// Tables in the wild mix several shapes:
//   - ISO dates, sometimes with a time suffix (2025-09-05, 2025-09-05T00:00)
//   - e-solat exports (05-Sep-2025) and their 2-digit-year variant (5-Sep-25)
//   - day-first numeric dates (5/9/2025, 05-09-25)
//   - US-style month names (Sep 5, 2025)
//
// NormalizeDate turns every recognised shape into YYYY-MM-DD. It is a bounded
// heuristic and not a calendar validator: out-of-range months and days pass
// through unchanged, and the first numeric group is always the day.

import (
	"regexp"
	"strconv"
	"strings"
)

// dateShape pairs a pattern with the builder that assembles the canonical date.
// A shape whose pattern matches owns the input: later shapes are not tried,
// even when the builder rejects the content.
type dateShape struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) string
}

// Pre-compiled shapes in priority order.
var dateShapes = []dateShape{
	{
		name:    "iso-prefix",
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
		build:   func(m []string) string { return m[0][:10] },
	},
	{
		name:    "day-mon-yy",
		pattern: regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{2})$`),
		build: func(m []string) string {
			return assemble(twoDigitYear(m[3]), monthNumber(m[2]), m[1])
		},
	},
	{
		name:    "day-mon-yyyy",
		pattern: regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{4})$`),
		build: func(m []string) string {
			return assemble(m[3], monthNumber(m[2]), m[1])
		},
	},
	{
		name:    "day-month-year",
		pattern: regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})([/-])(\d{4}|\d{2})$`),
		build: func(m []string) string {
			year := m[5]
			if len(year) == 2 {
				year = twoDigitYear(year)
			}
			return assemble(year, pad2(m[3]), m[1])
		},
	},
	{
		name:    "mon-day-yyyy",
		pattern: regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})$`),
		build: func(m []string) string {
			return assemble(m[3], monthNumber(m[1]), m[2])
		},
	},
}

// isoDateRegex matches a complete canonical date and nothing else.
var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// monthAbbrev maps lowercase English month abbreviations to their number.
var monthAbbrev = map[string]string{
	"jan": "01",
	"feb": "02",
	"mar": "03",
	"apr": "04",
	"may": "05",
	"jun": "06",
	"jul": "07",
	"aug": "08",
	"sep": "09",
	"oct": "10",
	"nov": "11",
	"dec": "12",
}

// NormalizeDate converts a date string to YYYY-MM-DD.
// Returns "" when the input is empty or its shape is not recognised.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	for _, shape := range dateShapes {
		m := shape.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		// Mixed separators ("5/9-2025") are not a numeric date.
		if shape.name == "day-month-year" && m[2] != m[4] {
			continue
		}
		return shape.build(m)
	}

	return ""
}

// IsISODate reports whether s is exactly YYYY-MM-DD.
func IsISODate(s string) bool {
	return isoDateRegex.MatchString(s)
}

// assemble joins the parts, returning "" when the month lookup failed.
func assemble(year, month, day string) string {
	if month == "" {
		return ""
	}
	return year + "-" + month + "-" + pad2(day)
}

// monthNumber looks up a 3-letter month abbreviation, case-insensitively.
func monthNumber(abbrev string) string {
	return monthAbbrev[strings.ToLower(abbrev)]
}

// twoDigitYear expands YY to 20YY.
func twoDigitYear(yy string) string {
	n, err := strconv.Atoi(yy)
	if err != nil {
		return yy
	}
	return strconv.Itoa(2000 + n)
}

// pad2 left-pads a 1-digit number with a zero.
func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

