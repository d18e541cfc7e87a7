// Package scheduler triggers capture runs on a cron schedule. The cron
// clock runs in UTC so the daily capture fires at the same wall time
// regardless of host timezone.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/trigger"
	"github.com/JaimeStill/postbox/pkg/lifecycle"
)

// Scheduler fires scheduled capture runs through a Runner.
type Scheduler struct {
	capture config.CaptureConfig
	runner  *trigger.Runner
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a Scheduler for the configured cron expression.
func New(capture config.CaptureConfig, runner *trigger.Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		capture: capture,
		runner:  runner,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		logger:  logger.With("system", "scheduler"),
	}
}

// Start registers the cron entry and ties the scheduler to the lifecycle.
// A tick that lands while a run is still in flight is skipped, not queued.
func (s *Scheduler) Start(lc *lifecycle.Coordinator) error {
	if !s.capture.ScheduleEnabled() {
		s.logger.Info("schedule disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.capture.Schedule, func() {
		report, err := s.runner.Run(context.Background())
		if err != nil {
			if errors.Is(err, trigger.ErrBusy) {
				s.logger.Warn("scheduled run skipped, previous run still in flight")
				return
			}
			s.logger.Error("scheduled run failed", "error", err)
			return
		}
		s.logger.Info("scheduled run complete",
			"run_id", report.RunID,
			"success", report.Success,
			"stored", report.ImagesStored,
		)
	})
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", s.capture.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("schedule active", "schedule", s.capture.Schedule)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Info("scheduler stopped")
	})

	return nil
}
