// Package timetable resolves one day's prayer times from a loosely formatted,
// delimited text table.
//
// The package is pure: it performs no I/O, keeps no state between calls and
// never caches parsed tables. Callers hand it the raw table text and a target
// date in YYYY-MM-DD form and get back a typed [Result].
//
// # Pipeline
//
// Resolution runs four steps, each consuming the previous one's output:
//
//  1. [ParseTable] turns raw text into a [Table] of header-keyed rows. The
//     delimiter (comma or semicolon) is picked once from the first line.
//  2. [ResolveColumn] maps a logical [Field] to a concrete header using the
//     field's ordered alias list.
//  3. [NormalizeDate] turns each row's date cell into canonical YYYY-MM-DD,
//     or "" when the shape is not recognised.
//  4. [LookupRow] scans rows for the first one matching the target date and
//     builds [Diagnostics] when nothing matches.
//
// [Resolve] composes the four steps:
//
//	res := timetable.Resolve(text, "2025-09-05", timetable.DefaultFields(), timetable.ParseOptions{})
//	switch res.Status {
//	case timetable.StatusMatched:
//	    fmt.Println(res.Values["fajr"])
//	case timetable.StatusUnmatched:
//	    fmt.Println(res.Diagnostics)
//	case timetable.StatusStructural:
//	    return res.Err
//	}
//
// # Failure Taxonomy
//
//   - Structural: the table is empty or the date column cannot be found.
//     Reported as [StatusStructural] with Err wrapping [ErrEmptyTable] or
//     [ErrDateColumnMissing].
//   - Content: a date cell has no recognised shape. Handled locally, the cell
//     normalises to "" and the row simply never matches.
//   - Lookup miss: no row carries the target date. Reported as
//     [StatusUnmatched] together with a sample of the dates the table holds.
//
// # Limitations
//
// Quoted fields are not supported; a cell containing the delimiter splits.
// Date normalisation is a bounded heuristic and does not check that months
// and days are in range.
package timetable
