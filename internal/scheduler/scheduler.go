package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes usage log entries older than a number of days.
type Pruner interface {
	CleanOldLogs(days int) (int64, error)
}

// Scheduler runs periodic maintenance on the usage log.
type Scheduler struct {
	db            Pruner
	retentionDays int
	interval      time.Duration
}

func New(db Pruner, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		retentionDays: retentionDays,
		interval:      time.Hour,
	}
}

// Run prunes once at startup and then on every tick until ctx is done.
// A retention of zero days keeps everything and Run returns immediately.
func (s *Scheduler) Run(ctx context.Context) {
	if s.retentionDays <= 0 {
		slog.Info("Usage log retention disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "retention_days", s.retentionDays)

	s.prune()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Scheduler) prune() {
	n, err := s.db.CleanOldLogs(s.retentionDays)
	if err != nil {
		slog.Error("Failed to clean old usage logs", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Cleaned up old usage logs", "count", n)
	}
}
