package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxSampleDates caps Diagnostics.SampleDates.
const MaxSampleDates = 8

// Structural failures. Result.Err wraps one of these when Status is StatusStructural.
var (
	ErrEmptyTable        = errors.New("empty table")
	ErrDateColumnMissing = errors.New("date column not found")
)

// Status is the outcome of a resolution.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusUnmatched  Status = "unmatched"
	StatusStructural Status = "structural"
)

// Diagnostics describes the dates a table holds. Built only on a lookup miss.
type Diagnostics struct {
	SampleDates []string `json:"sampleDates"`
	RangeLow    string   `json:"rangeLow"`
	RangeHigh   string   `json:"rangeHigh"`
	Rows        int      `json:"rows"`
}

// String renders the diagnostics on one line for logs and status messages.
func (d Diagnostics) String() string {
	if len(d.SampleDates) == 0 {
		return fmt.Sprintf("no readable dates in %d rows", d.Rows)
	}
	return fmt.Sprintf("table covers %s .. %s (%d rows); sample: %s",
		d.RangeLow, d.RangeHigh, d.Rows, strings.Join(d.SampleDates, ", "))
}

// Lookup is the result of scanning a table for a date.
// Exactly one of Row and Diagnostics is non-nil.
type Lookup struct {
	Row         *Row
	Diagnostics *Diagnostics
}

// LookupRow returns the first row whose date cell normalizes to target.
// On a miss it summarises the dates the table does hold.
func LookupRow(table Table, dateCol Column, target string) Lookup {
	for i := range table.Rows {
		if NormalizeDate(dateCol.Value(table.Rows[i])) == target {
			row := table.Rows[i]
			return Lookup{Row: &row}
		}
	}

	diag := summarizeDates(table, dateCol)
	return Lookup{Diagnostics: &diag}
}

// summarizeDates collects each row's date (normalized when possible, raw
// otherwise) and derives the sample and range.
func summarizeDates(table Table, dateCol Column) Diagnostics {
	var collected []string
	for _, row := range table.Rows {
		raw := strings.TrimSpace(dateCol.Value(row))
		d := NormalizeDate(raw)
		if d == "" {
			d = raw
		}
		if d != "" {
			collected = append(collected, d)
		}
	}

	diag := Diagnostics{Rows: len(table.Rows)}
	if len(collected) == 0 {
		return diag
	}

	n := len(collected)
	if n > MaxSampleDates {
		n = MaxSampleDates
	}
	diag.SampleDates = append([]string(nil), collected[:n]...)

	var iso []string
	for _, d := range collected {
		if IsISODate(d) {
			iso = append(iso, d)
		}
	}

	if len(iso) > 0 {
		sort.Strings(iso)
		diag.RangeLow, diag.RangeHigh = iso[0], iso[len(iso)-1]
	} else {
		diag.RangeLow, diag.RangeHigh = collected[0], collected[len(collected)-1]
	}
	return diag
}

// Result is the typed outcome of Resolve.
type Result struct {
	Status Status
	Target string

	// Values holds every requested field. Fields whose column is absent, or
	// whose cell is empty, map to "". On a miss every value is "".
	Values map[string]string

	// Row is the matched row (StatusMatched only).
	Row *Row

	// DateColumn is the header used for dates ("" when it was not found).
	DateColumn string

	// Diagnostics is set for StatusUnmatched.
	Diagnostics *Diagnostics

	// Err wraps ErrEmptyTable or ErrDateColumnMissing for StatusStructural.
	Err error
}

// Message renders a one-line, human-readable status.
func (r Result) Message() string {
	switch r.Status {
	case StatusMatched:
		return fmt.Sprintf("found row for %s", r.Target)
	case StatusUnmatched:
		if r.Diagnostics == nil {
			return fmt.Sprintf("no row for %s", r.Target)
		}
		return fmt.Sprintf("no row for %s; %s", r.Target, r.Diagnostics)
	case StatusStructural:
		if r.Err != nil {
			return r.Err.Error()
		}
		return "structural failure"
	default:
		return string(r.Status)
	}
}

// Resolve parses text and returns the values of fields for the target date.
//
// The date column is located through the aliases of the field named
// FieldDate, falling back to DateAliases when fields has no such entry.
func Resolve(text, target string, fields []Field, opts ParseOptions) Result {
	res := Result{Target: target, Values: emptyValues(fields)}

	table := ParseTable(text, opts)
	if table.Empty() {
		res.Status = StatusStructural
		res.Err = ErrEmptyTable
		return res
	}

	dateCol := ResolveColumn(table.Headers, dateAliases(fields))
	if !dateCol.Found() {
		res.Status = StatusStructural
		res.Err = fmt.Errorf("%w: headers %q", ErrDateColumnMissing, table.Headers)
		return res
	}
	res.DateColumn = dateCol.Header

	lookup := LookupRow(table, dateCol, target)
	if lookup.Row == nil {
		res.Status = StatusUnmatched
		res.Diagnostics = lookup.Diagnostics
		return res
	}

	res.Status = StatusMatched
	res.Row = lookup.Row
	for _, f := range fields {
		res.Values[f.Name] = ResolveColumn(table.Headers, f.Aliases).Value(*lookup.Row)
	}
	return res
}

// dateAliases returns the alias list used to find the date column.
func dateAliases(fields []Field) []string {
	for _, f := range fields {
		if f.Name == FieldDate && len(f.Aliases) > 0 {
			return f.Aliases
		}
	}
	return DateAliases
}

// emptyValues returns a map with every field set to "".
func emptyValues(fields []Field) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = ""
	}
	return values
}
