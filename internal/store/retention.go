package store

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls lookup log pruning.
type RetentionConfig struct {
	KeepFor       time.Duration // entries older than this are deleted
	CheckInterval time.Duration // how often to prune
}

// StartRetention prunes old lookups immediately, then every CheckInterval,
// until ctx is cancelled. A non-positive KeepFor disables pruning.
func (s *Store) StartRetention(ctx context.Context, cfg RetentionConfig) {
	if cfg.KeepFor <= 0 {
		slog.Info("lookup retention disabled")
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}

	slog.Info("lookup retention started",
		"keep_for", cfg.KeepFor.String(),
		"check_interval", cfg.CheckInterval.String(),
	)

	s.prune(ctx, cfg.KeepFor)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("lookup retention stopped")
			return
		case <-ticker.C:
			s.prune(ctx, cfg.KeepFor)
		}
	}
}

func (s *Store) prune(ctx context.Context, keepFor time.Duration) {
	start := time.Now()
	purged, err := s.PurgeBefore(ctx, start.Add(-keepFor))
	if err != nil {
		slog.Error("lookup purge failed", "error", err)
		return
	}
	slog.Info("purged old lookups",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
