// Package resetsweep rolls stale daily counters forward in bulk.
// Rollover is already lazy at read and consume time; the sweep keeps
// rows of idle users from carrying week-old counters and keeps
// reporting queries honest.
package resetsweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/rules"
)

type UsageStore interface {
	ResetExpired(ctx context.Context, dayKey string) (int64, error)
}

type Job struct {
	store    UsageStore
	loc      *time.Location
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewJob(store UsageStore, loc *time.Location, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:    store,
		loc:      loc,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one sweep pass.
func (j *Job) Run(ctx context.Context) (int64, error) {
	dayKey := rules.DayKey(j.now(), j.loc)

	reset, err := j.store.ResetExpired(ctx, dayKey)
	if err != nil {
		j.logger.Error("usage reset sweep failed", zap.String("day", dayKey), zap.Error(err))
		return 0, err
	}

	if reset > 0 {
		j.logger.Info("usage reset sweep done", zap.String("day", dayKey), zap.Int64("rows", reset))
	}

	return reset, nil
}

// Start runs sweep passes on a ticker until the context is cancelled.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
