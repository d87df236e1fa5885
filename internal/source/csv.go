package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

// WriteCSV writes records as CSV with a Columns header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	row := make([]string, len(Columns))
	for _, rec := range records {
		for i, col := range Columns {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes records to dir/name, creating dir when needed, and returns the path.
func SaveCSV(dir, name string, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	slog.Info("wrote timetable", "path", path, "rows", len(records))
	return path, nil
}

// Range summarises the distinct dates held by a set of records.
type Range struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Days  int    `json:"days"`
}

// DateRange returns the earliest and latest record dates. Dates are compared
// in canonical form; records whose date cannot be normalized are ignored.
func DateRange(records []Record) Range {
	seen := make(map[string]bool)
	for _, rec := range records {
		if d := timetable.NormalizeDate(rec["date"]); d != "" {
			seen[d] = true
		}
	}
	if len(seen) == 0 {
		return Range{}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return Range{First: dates[0], Last: dates[len(dates)-1], Days: len(dates)}
}
