package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

// builtinDateFormats are the built-in number formats that show a calendar
// date (m/d/yy variants). Time-only formats are left as displayed.
var builtinDateFormats = map[int]bool{14: true, 15: true, 16: true, 17: true, 22: true}

// ReadWorkbook flattens the first sheet of an .xlsx file to delimited text.
// Date cells are written as YYYY-MM-DD.
func ReadWorkbook(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// Excel's default date format is month-first, which the text parser
	// would read day-first.
	for r, row := range rows {
		for c := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return "", err
			}
			if iso, ok := dateCell(f, sheet, cell, date1904); ok {
				row[c] = iso
			}
		}
	}

	return FlattenRows(rows), nil
}

// dateCell returns the cell's date as YYYY-MM-DD when the cell holds a
// date: either an ISO date cell or a serial number with a date format.
func dateCell(f *excelize.File, sheet, cell string, date1904 bool) (string, bool) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return "", false
	}
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil || raw == "" {
		return "", false
	}

	switch typ {
	case excelize.CellTypeDate:
		if len(raw) >= 10 && timetable.IsISODate(raw[:10]) {
			return raw[:10], true
		}
		return "", false
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
	default:
		return "", false
	}

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return "", false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || !isDateStyle(style) {
		return "", false
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	return t.Format(dateLayout), true
}

// isDateStyle reports whether style's number format shows a day or year.
func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt == nil {
		return builtinDateFormats[style.NumFmt]
	}

	// Drop quoted literals and [colour]/[locale] sections before looking
	// for date tokens.
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range strings.ToLower(*style.CustomNumFmt) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	format := b.String()
	return strings.ContainsAny(format, "dy")
}

// FlattenRows joins spreadsheet rows into delimited text. Cells are joined
// with a semicolon when any cell contains a comma, otherwise with a comma,
// so the text parser's first-line detection still splits them correctly.
func FlattenRows(rows [][]string) string {
	sep := ","
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, ",") {
				sep = ";"
				break
			}
		}
		if sep == ";" {
			break
		}
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, sep)
	}
	// A semicolon table needs more semicolons than commas on its first line.
	if sep == ";" && len(lines) > 0 && strings.Count(lines[0], ";") <= strings.Count(lines[0], ",") {
		lines[0] += strings.Repeat(";", strings.Count(lines[0], ",")-strings.Count(lines[0], ";")+1)
	}
	return strings.Join(lines, "\n")
}
