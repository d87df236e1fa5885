// Package store keeps a log of timetable lookups in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

// MaxRecent caps RecentLookups.
const MaxRecent = 500

// PoolConfig configures the connection pool. Zero values keep pgx defaults.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is the lookup log. It satisfies solat.Recorder.
type Store struct {
	pool *pgxpool.Pool
}

var _ solat.Recorder = (*Store)(nil)

// Open connects, pings and returns a Store.
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS lookup_log (
	id          UUID PRIMARY KEY,
	zone        TEXT NOT NULL,
	lookup_date DATE NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	range_low   TEXT,
	range_high  TEXT,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS lookup_log_zone_created_idx ON lookup_log (zone, created_at DESC);
`

// Migrate creates the lookup_log table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate lookup_log: %w", err)
	}
	return nil
}

// RecordLookup inserts one entry.
func (s *Store) RecordLookup(ctx context.Context, e solat.LookupEntry) error {
	date, err := toPgDate(e.Date)
	if err != nil {
		return err
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO lookup_log (id, zone, lookup_date, status, message, range_low, range_high, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		toPgUUID(e.ID),
		e.Zone,
		date,
		string(e.Status),
		e.Message,
		toPgText(e.RangeLow),
		toPgText(e.RangeHigh),
		e.DurationMs,
		pgtype.Timestamptz{Time: created, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

// RecentLookups returns the newest entries, optionally for one zone only.
func (s *Store) RecentLookups(ctx context.Context, zone string, limit int) ([]solat.LookupEntry, error) {
	limit = clampLimit(limit)

	rows, err := s.pool.Query(ctx, `
		SELECT id, zone, lookup_date, status, message, range_low, range_high, duration_ms, created_at
		FROM lookup_log
		WHERE ($1::text = '' OR zone = $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		strings.ToUpper(zone), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan lookups: %w", err)
	}
	return entries, nil
}

// PurgeBefore deletes entries created before cutoff and returns how many went.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lookup_log WHERE created_at < $1`,
		pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("purge lookups: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.CollectableRow) (solat.LookupEntry, error) {
	var (
		id        pgtype.UUID
		e         solat.LookupEntry
		date      pgtype.Date
		status    string
		low, high pgtype.Text
		created   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &e.Zone, &date, &status, &e.Message, &low, &high, &e.DurationMs, &created); err != nil {
		return e, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.Status = timetable.Status(status)
	if date.Valid {
		e.Date = date.Time.Format("2006-01-02")
	}
	e.RangeLow = low.String
	e.RangeHigh = high.String
	e.CreatedAt = created.Time
	return e, nil
}

// DatabaseName returns the database named by a connection URL, for logging.
func DatabaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > MaxRecent {
		return MaxRecent
	}
	return limit
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgDate(s string) (pgtype.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("lookup date %q: %w", s, err)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}
