package repo

import (
	"context"
	"log/slog"
	"time"

	"edgelink.local/internal/platform/metrics"
)

// Purger deletes records whose expiry has passed. Backends with native TTL
// (DynamoDB) do not need one.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper runs a Purger on a fixed interval until its context ends.
type Sweeper struct {
	purger   Purger
	interval time.Duration
	now      func() time.Time
}

// DefaultSweepInterval replaces non-positive intervals, which time.NewTicker rejects.
const DefaultSweepInterval = 10 * time.Minute

func NewSweeper(p Purger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{purger: p, interval: interval, now: time.Now}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) int64 {
	n, err := s.purger.PurgeExpired(ctx, s.now())
	if err != nil {
		slog.Error("sweeper: purge failed", "err", err)
		return 0
	}
	if n > 0 {
		metrics.PurgedRecords.Add(float64(n))
		slog.Info("sweeper: purged expired records", "count", n)
	}
	return n
}
