package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// The daily check fires at 00:05 local time; the sweep itself only runs
// when that day is the first of the month.
const dailyCheckSpec = "5 0 * * *"

// Scheduler owns the recurring retention check. A single instance must be
// started at most once per process.
type Scheduler struct {
	store    *Store
	logger   *slog.Logger
	schedule cron.Schedule
	started  atomic.Bool
	now      func() time.Time
}

func NewScheduler(store *Store, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schedule, err := cron.ParseStandard(dailyCheckSpec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule: %w", err)
	}
	return &Scheduler{
		store:    store,
		logger:   logger,
		schedule: schedule,
		now:      time.Now,
	}, nil
}

// Start runs the scheduler loop until ctx is cancelled. It sweeps once at
// startup when today is the first of the month, then waits for each daily
// 00:05 firing. Every firing re-checks the first-of-month condition and the
// loop always re-arms, whether or not a sweep ran.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("sweep scheduler already started")
	}

	if firstOfMonth(s.now()) {
		s.logger.Info("first day of month, running startup retention sweep")
		if _, err := s.store.Sweep(); err != nil {
			s.logger.Error("startup retention sweep failed", "error", err)
		}
	}

	for {
		next := s.schedule.Next(s.now())
		s.logger.Info("next retention check scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweep scheduler stopped")
			return nil
		case <-timer.C:
		}

		if firstOfMonth(s.now()) {
			s.logger.Info("first day of month, running retention sweep")
			if _, err := s.store.Sweep(); err != nil {
				s.logger.Error("retention sweep failed", "error", err)
			}
		} else {
			s.logger.Info("not the first day of month, skipping sweep")
		}
	}
}

func firstOfMonth(t time.Time) bool {
	return t.Day() == 1
}
