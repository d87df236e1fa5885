package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

// ErrTableNotFound is returned by a Loader that has no table covering the requested day.
var ErrTableNotFound = errors.New("timetable not found")

// Loader supplies the raw text of a timetable covering day for zone.
type Loader interface {
	Load(ctx context.Context, zone string, day time.Time) (string, error)
}

// ----------------------------------------------------------------------------
// Directory
// ----------------------------------------------------------------------------

// UncoveredError reports that the only tables found for a zone do not hold
// the requested day. Text is the first such table, so a caller with no
// better source can still report what the table does cover.
type UncoveredError struct {
	Path string
	Day  string
	Text string
}

func (e *UncoveredError) Error() string {
	return fmt.Sprintf("%s: %s has no row for %s", ErrTableNotFound, filepath.Base(e.Path), e.Day)
}

// Is makes an UncoveredError match ErrTableNotFound.
func (e *UncoveredError) Is(target error) bool {
	return target == ErrTableNotFound
}

// DirLoader reads tables saved under Dir by the naming convention. Period
// tables for day's month are tried first (Periods order, then Extensions
// order); after that any duration table whose range covers day.
//
// A week or year table stamped with day's month may not hold day itself.
// Such a table is skipped, and when nothing else covers day the loader
// returns an *UncoveredError carrying it.
type DirLoader struct {
	Dir     string
	Prefix  string                 // default DefaultPrefix
	Periods []Period               // default Periods
	Parse   timetable.ParseOptions // used to check a table covers day
}

// Load implements Loader.
func (l DirLoader) Load(ctx context.Context, zone string, day time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := day.Format(dateLayout)
	var uncovered *UncoveredError

	for _, name := range l.candidates(zone, day) {
		path := filepath.Join(l.Dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}

		text, err := ReadTableFile(path)
		if err != nil {
			return "", err
		}
		if l.covers(text, target) {
			return text, nil
		}

		slog.Debug("timetable does not cover day", "path", path, "date", target)
		if uncovered == nil {
			uncovered = &UncoveredError{Path: path, Day: target, Text: text}
		}
	}

	path, err := l.findDuration(zone, day)
	if err != nil {
		return "", err
	}
	if path != "" {
		return ReadTableFile(path)
	}

	if uncovered != nil {
		return "", uncovered
	}
	return "", fmt.Errorf("%w: zone %s on %s in %s", ErrTableNotFound, zone, target, l.Dir)
}

// covers reports whether text has a row dated target. Tables without a
// recognisable date column count as covering so the resolver can report
// the structural problem.
func (l DirLoader) covers(text, target string) bool {
	table := timetable.ParseTable(text, l.Parse)
	col := timetable.ResolveColumn(table.Headers, timetable.DateAliases)
	if !col.Found() {
		return true
	}
	return timetable.LookupRow(table, col, target).Row != nil
}

func (l DirLoader) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

// candidates lists period file names in lookup order.
func (l DirLoader) candidates(zone string, day time.Time) []string {
	periods := l.Periods
	if len(periods) == 0 {
		periods = Periods
	}

	var names []string
	for _, p := range periods {
		if p == PeriodDuration {
			continue
		}
		for _, ext := range Extensions {
			names = append(names, FileName(l.prefix(), zone, p, day, ext))
		}
	}
	return names
}

// findDuration returns the first duration table covering day, or "".
func (l DirLoader) findDuration(zone string, day time.Time) (string, error) {
	matches, err := filepath.Glob(filepath.Join(l.Dir, l.prefix()+"_"+zone+"_*_to_*.*"))
	if err != nil {
		return "", err
	}

	target := day.Format(dateLayout)
	for _, path := range matches {
		start, end, ok := parseDurationName(filepath.Base(path))
		if !ok || !supportedExt(path) {
			continue
		}
		if start <= target && target <= end {
			return path, nil
		}
	}
	return "", nil
}

func supportedExt(path string) bool {
	ext := cleanExt(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ReadTableFile returns a table file as text. Workbooks are flattened;
// everything else is read as cleaned text.
func ReadTableFile(path string) (string, error) {
	if cleanExt(filepath.Ext(path)) == "xlsx" {
		return ReadWorkbook(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := ReadText(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	slog.Debug("loaded timetable", "path", path, "bytes", len(text))
	return text, nil
}

// ----------------------------------------------------------------------------
// API
// ----------------------------------------------------------------------------

// APILoader fetches the month containing day from the e-solat API and renders
// it as CSV text.
type APILoader struct {
	Client *Client
}

// Load implements Loader.
func (l APILoader) Load(ctx context.Context, zone string, day time.Time) (string, error) {
	start, end := MonthBounds(day)
	records, err := l.Client.Fetch(ctx, Request{
		Zone:   zone,
		Period: PeriodDuration,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: API returned no entries for %s %s..%s", ErrTableNotFound, zone, start, end)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ----------------------------------------------------------------------------
// Composition
// ----------------------------------------------------------------------------

// ChainLoader tries each loader in turn. It moves to the next loader only
// when the current one reports ErrTableNotFound. When every loader misses
// and one of them found a table not covering the day, that table's text is
// returned.
type ChainLoader []Loader

// Load implements Loader.
func (c ChainLoader) Load(ctx context.Context, zone string, day time.Time) (string, error) {
	var (
		misses    []string
		uncovered *UncoveredError
	)
	for _, l := range c {
		text, err := l.Load(ctx, zone, day)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrTableNotFound) {
			return "", err
		}
		var u *UncoveredError
		if uncovered == nil && errors.As(err, &u) {
			uncovered = u
		}
		misses = append(misses, err.Error())
	}

	if uncovered != nil {
		return uncovered.Text, nil
	}

	if len(misses) == 0 {
		return "", fmt.Errorf("%w: no loaders configured", ErrTableNotFound)
	}
	return "", fmt.Errorf("%w (%s)", ErrTableNotFound, strings.Join(misses, "; "))
}

// StaticLoader always returns Text, whatever the zone or day.
type StaticLoader struct {
	Text string
}

// Load implements Loader.
func (s StaticLoader) Load(ctx context.Context, _ string, _ time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}
