package jobs

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the clock-driven jobs: the weekly orphan cleanup and the
// daily missed-workout sweep.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(registry *Registry, cleanupSpec, sweepSpec string, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(cleanupSpec, func() {
		if _, err := registry.EnqueueOrphanCleanup(); err != nil {
			logger.Error("enqueue orphan cleanup failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid orphan cleanup schedule %q: %w", cleanupSpec, err)
	}

	if _, err := c.AddFunc(sweepSpec, func() {
		if _, err := registry.EnqueueMissedSweep(); err != nil {
			logger.Error("enqueue missed sweep failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid missed sweep schedule %q: %w", sweepSpec, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
