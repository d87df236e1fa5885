// Package solat resolves a zone's daily prayer times from whatever timetable
// source is configured. It ties the table source, the zone registry and the
// timetable resolver together and reports each resolution to an optional
// lookup log.
package solat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/logging"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

var (
	ErrUnknownZone = errors.New("unknown zone")
	ErrInvalidDate = errors.New("invalid date")
)

// StatusSourceError marks a DayTimes whose table could not be loaded.
const StatusSourceError timetable.Status = "source_error"

// DefaultTimezone is the zone used to decide what "today" is.
const DefaultTimezone = "Asia/Kuala_Lumpur"

// DayTimes is one zone's resolved timetable row for one date.
type DayTimes struct {
	ID          uuid.UUID              `json:"id"`
	Zone        string                 `json:"zone"`
	Date        string                 `json:"date"`
	Status      timetable.Status       `json:"status"`
	Message     string                 `json:"message"`
	Times       map[string]string      `json:"times"`
	Diagnostics *timetable.Diagnostics `json:"diagnostics,omitempty"`
	ResolvedAt  time.Time              `json:"resolvedAt"`
}

// Found reports whether a row was matched.
func (d DayTimes) Found() bool {
	return d.Status == timetable.StatusMatched
}

// LookupEntry is what a Recorder receives for every resolution.
type LookupEntry struct {
	ID         uuid.UUID        `json:"id"`
	Zone       string           `json:"zone"`
	Date       string           `json:"date"`
	Status     timetable.Status `json:"status"`
	Message    string           `json:"message"`
	RangeLow   string           `json:"rangeLow,omitempty"`
	RangeHigh  string           `json:"rangeHigh,omitempty"`
	DurationMs int64            `json:"durationMs"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Recorder persists lookup entries.
type Recorder interface {
	RecordLookup(ctx context.Context, entry LookupEntry) error
}

// Config configures a Service. Zero values take defaults.
type Config struct {
	Zone     string                 // default zone.Default
	Location *time.Location         // default Asia/Kuala_Lumpur (UTC+8 when tzdata is missing)
	Fields   []timetable.Field      // default timetable.DefaultFields()
	Parse    timetable.ParseOptions // delimiter override
	Now      func() time.Time       // default time.Now
}

// Service resolves daily timetables. It is safe for concurrent use.
type Service struct {
	loader   source.Loader
	zone     string
	loc      *time.Location
	fields   []timetable.Field
	opts     timetable.ParseOptions
	now      func() time.Time
	recorder Recorder
}

// NewService creates a Service reading tables from loader.
func NewService(loader source.Loader, cfg Config) (*Service, error) {
	if loader == nil {
		return nil, errors.New("solat: loader is required")
	}

	code := zone.Normalize(cfg.Zone)
	if code == "" {
		code = zone.Default
	}
	if _, ok := zone.Get(code); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, code)
	}

	if cfg.Location == nil {
		cfg.Location = LoadLocation(DefaultTimezone)
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = timetable.DefaultFields()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		loader: loader,
		zone:   code,
		loc:    cfg.Location,
		fields: cfg.Fields,
		opts:   cfg.Parse,
		now:    cfg.Now,
	}, nil
}

// SetRecorder attaches a lookup log. Call before serving requests.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Zone returns the default zone code.
func (s *Service) Zone() string {
	return s.zone
}

// Location returns the timezone used for "today".
func (s *Service) Location() *time.Location {
	return s.loc
}

// TodayDate returns today's date in the service timezone as YYYY-MM-DD.
func (s *Service) TodayDate() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// Today resolves today's row for the default zone.
func (s *Service) Today(ctx context.Context) (DayTimes, error) {
	return s.Lookup(ctx, s.zone, s.TodayDate())
}

// ForDate resolves the default zone for date, which may be in any shape the
// date normalizer accepts.
func (s *Service) ForDate(ctx context.Context, date string) (DayTimes, error) {
	return s.Lookup(ctx, s.zone, date)
}

// Lookup resolves zoneCode for date.
//
// An unmatched date is not an error: the returned DayTimes carries the
// diagnostics. Structural and source failures return an error together with
// a DayTimes describing them.
func (s *Service) Lookup(ctx context.Context, zoneCode, date string) (DayTimes, error) {
	start := time.Now()

	code := zone.Normalize(zoneCode)
	if code == "" {
		code = s.zone
	}
	if _, ok := zone.Get(code); !ok {
		return DayTimes{}, fmt.Errorf("%w: %s", ErrUnknownZone, code)
	}

	target, day, err := ParseDate(date, s.loc)
	if err != nil {
		return DayTimes{}, err
	}

	log := logging.WithFields(ctx, "zone", code, "date", target)

	dt := DayTimes{
		ID:     uuid.New(),
		Zone:   code,
		Date:   target,
		Times:  s.emptyTimes(),
		Status: StatusSourceError,
	}

	text, err := s.loader.Load(ctx, code, day)
	var uncovered *source.UncoveredError
	if errors.As(err, &uncovered) {
		// Resolve the nearest table anyway so the miss carries diagnostics.
		text, err = uncovered.Text, nil
	}
	if err != nil {
		dt.Message = err.Error()
		dt.ResolvedAt = s.now()
		log.Warn("timetable source failed", "error", err)
		s.record(ctx, dt, time.Since(start))
		return dt, fmt.Errorf("load %s %s: %w", code, target, err)
	}

	res := timetable.Resolve(text, target, s.fields, s.opts)
	dt.Status = res.Status
	dt.Message = res.Message()
	dt.Times = res.Values
	dt.Diagnostics = res.Diagnostics
	dt.ResolvedAt = s.now()

	s.record(ctx, dt, time.Since(start))

	switch res.Status {
	case timetable.StatusStructural:
		log.Error("timetable unusable", "error", res.Err)
		return dt, fmt.Errorf("resolve %s %s: %w", code, target, res.Err)
	case timetable.StatusUnmatched:
		log.Warn("no row for date", "diagnostics", res.Diagnostics.String())
	default:
		log.Debug("resolved", "date_column", res.DateColumn)
	}
	return dt, nil
}

// emptyTimes maps every configured field to "".
func (s *Service) emptyTimes() map[string]string {
	times := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		times[f.Name] = ""
	}
	return times
}

// record hands the resolution to the recorder. Failures are logged only.
func (s *Service) record(ctx context.Context, dt DayTimes, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}

	entry := LookupEntry{
		ID:         dt.ID,
		Zone:       dt.Zone,
		Date:       dt.Date,
		Status:     dt.Status,
		Message:    dt.Message,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  dt.ResolvedAt,
	}
	if dt.Diagnostics != nil {
		entry.RangeLow = dt.Diagnostics.RangeLow
		entry.RangeHigh = dt.Diagnostics.RangeHigh
	}

	if err := s.recorder.RecordLookup(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("failed to record lookup", "zone", dt.Zone, "date", dt.Date, "error", err)
	}
}

// ParseDate normalizes date and checks it names a real calendar day, which
// is needed to pick the table file covering it.
func ParseDate(date string, loc *time.Location) (string, time.Time, error) {
	target := timetable.NormalizeDate(date)
	if target == "" {
		return "", time.Time{}, fmt.Errorf("%w: %q is not a recognised date", ErrInvalidDate, date)
	}

	day, err := time.ParseInLocation("2006-01-02", target, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q is not a calendar day", ErrInvalidDate, date)
	}
	return target, day, nil
}

// LoadLocation loads a timezone, falling back to fixed UTC+8 (Malaysia time)
// when the name cannot be loaded.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	slog.Warn("timezone unavailable, using UTC+8", "timezone", name, "error", err)
	return time.FixedZone("MYT", 8*60*60)
}
