package timetable

import "strings"

// Column identifies a resolved table column. The zero value is the absent column.
type Column struct {
	Header string // Original header text, as it appears in the table
	Index  int    // Position in Table.Headers
	found  bool
}

// Found reports whether the column exists in the table.
func (c Column) Found() bool {
	return c.found
}

// Value reads the column's cell from a row. Absent columns always yield "".
func (c Column) Value(r Row) string {
	if !c.found {
		return ""
	}
	return r.At(c.Index)
}

// ResolveColumn finds the column for an ordered alias list.
//
// Headers and aliases are compared trimmed and lowercased; matching is exact,
// never by substring. Headers are scanned in table order and, for each header,
// aliases in the given order, so the earliest header matching any alias wins.
// For aliases ["fajr", "subuh"] and headers ["Date", "Subuh", "Fajr"] the
// result is "Subuh".
func ResolveColumn(headers []string, aliases []string) Column {
	normalized := make([]string, len(aliases))
	for i, a := range aliases {
		normalized[i] = normalizeHeader(a)
	}

	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		for _, alias := range normalized {
			if key == alias {
				return Column{Header: h, Index: i, found: true}
			}
		}
	}
	return Column{}
}

// normalizeHeader is the comparison form of a header or alias.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
