package solat

// scheduler.go pushes today's times to a publisher on a fixed interval.
//
// A publish pass runs immediately on start, then every interval, so a
// display that reconnects picks up a fresh retained message within one
// interval of midnight. Failed passes are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// Publisher delivers resolved times to displays.
type Publisher interface {
	Publish(ctx context.Context, dt DayTimes) error
}

// DefaultPublishInterval is used when StartPublisher gets a non-positive interval.
const DefaultPublishInterval = 15 * time.Minute

// StartPublisher resolves today and publishes it until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartPublisher(ctx context.Context, pub Publisher, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	slog.Info("publisher started", "zone", s.zone, "interval", interval.String())

	s.PublishOnce(ctx, pub)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("publisher stopped", "zone", s.zone)
			return
		case <-ticker.C:
			s.PublishOnce(ctx, pub)
		}
	}
}

// PublishOnce resolves today and publishes the result. Unmatched days are
// still published so displays can show the diagnostic message. Returns
// false when nothing was published.
func (s *Service) PublishOnce(ctx context.Context, pub Publisher) bool {
	start := time.Now()

	dt, err := s.Today(ctx)
	if err != nil && dt.Zone == "" {
		slog.Error("publish skipped", "zone", s.zone, "error", err)
		return false
	}
	if err != nil {
		slog.Warn("publishing failed resolution", "zone", dt.Zone, "date", dt.Date, "status", dt.Status, "error", err)
	}

	if err := pub.Publish(ctx, dt); err != nil {
		slog.Error("publish failed", "zone", dt.Zone, "date", dt.Date, "error", err)
		return false
	}

	slog.Info("published times",
		"zone", dt.Zone,
		"date", dt.Date,
		"status", dt.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true
}
