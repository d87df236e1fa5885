package timetable

// parser.go turns raw delimited text into a Table.
//
// Source tables come from spreadsheets exported on different machines, so the
// parser tolerates Windows line endings, a UTF-8 byte-order mark on the first
// header, blank lines, short rows and trailing junk cells. It does not support
// quoted fields.

import (
	"strings"
)

// utf8BOM is the byte-order mark some spreadsheet exports put before the first header.
const utf8BOM = "\ufeff"

// Delimiter separates cells within a line.
type Delimiter rune

const (
	// DelimiterAuto picks comma or semicolon from the first line.
	DelimiterAuto      Delimiter = 0
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
)

// String returns the delimiter name used in configuration.
func (d Delimiter) String() string {
	switch d {
	case DelimiterAuto:
		return "auto"
	case DelimiterComma:
		return "comma"
	case DelimiterSemicolon:
		return "semicolon"
	case DelimiterTab:
		return "tab"
	default:
		return string(rune(d))
	}
}

// ParseDelimiter converts a configuration name to a Delimiter.
// Accepts auto, comma, semicolon, tab or the literal character.
func ParseDelimiter(s string) (Delimiter, bool) {
	if s == "\t" {
		return DelimiterTab, true
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DelimiterAuto, true
	case "comma", ",":
		return DelimiterComma, true
	case "semicolon", ";":
		return DelimiterSemicolon, true
	case "tab", `\t`:
		return DelimiterTab, true
	}
	return DelimiterAuto, false
}

// ParseOptions controls table parsing.
type ParseOptions struct {
	// Delimiter pins the cell separator. DelimiterAuto detects it from the first line.
	Delimiter Delimiter
}

// Table is a parsed delimited table. It is never mutated after ParseTable returns.
type Table struct {
	Headers []string // Trimmed, BOM-stripped, case preserved
	Rows    []Row
}

// Empty reports whether the table has no headers.
func (t Table) Empty() bool {
	return len(t.Headers) == 0
}

// Row is one data record. Values[i] belongs to Headers[i]; both slices always
// have the same length, with missing trailing cells stored as "".
type Row struct {
	Headers []string
	Values  []string
}

// At returns the cell at column i, or "" when i is out of range.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Get returns the cell under the first header equal to h.
func (r Row) Get(h string) (string, bool) {
	for i, header := range r.Headers {
		if header == h {
			return r.Values[i], true
		}
	}
	return "", false
}

// Map returns the row as a header -> value map.
// Later duplicates of a header name do not overwrite the first.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.Headers))
	for i, h := range r.Headers {
		if _, seen := m[h]; !seen {
			m[h] = r.Values[i]
		}
	}
	return m
}

// ParseTable parses raw text into a Table.
// Empty or whitespace-only text yields an empty Table, not an error.
func ParseTable(text string, opts ParseOptions) Table {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return Table{}
	}

	lines := strings.Split(text, "\n")

	delim := opts.Delimiter
	if delim == DelimiterAuto {
		delim = DetectDelimiter(lines[0])
	}
	sep := string(rune(delim))

	headers := strings.Split(lines[0], sep)
	headers[0] = strings.TrimPrefix(strings.TrimSpace(headers[0]), utf8BOM)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	table := Table{Headers: headers}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.Rows = append(table.Rows, buildRow(headers, strings.Split(line, sep)))
	}

	return table
}

// DetectDelimiter picks semicolon when the line holds strictly more semicolons
// than commas, otherwise comma.
func DetectDelimiter(firstLine string) Delimiter {
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return DelimiterSemicolon
	}
	return DelimiterComma
}

// buildRow pairs cells with headers, padding short rows and dropping extra cells.
func buildRow(headers, cells []string) Row {
	values := make([]string, len(headers))
	for i := range headers {
		if i < len(cells) {
			values[i] = strings.TrimSpace(cells[i])
		}
	}
	return Row{Headers: headers, Values: values}
}
