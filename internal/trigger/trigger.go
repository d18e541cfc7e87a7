// Package trigger executes capture runs on demand. A Runner serializes
// runs so the scheduler and the HTTP trigger can never overlap sessions
// against the portal.
package trigger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/retention"
	"github.com/JaimeStill/postbox/internal/runs"
	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/storage"
	"github.com/JaimeStill/postbox/workflow"
)

// ErrBusy indicates a capture run is already in progress.
var ErrBusy = errors.New("capture run already in progress")

// Runner owns capture run execution: one run at a time, each with a fresh
// workflow runtime, recorded to the runs table and followed by a
// retention sweep.
type Runner struct {
	mu sync.Mutex

	capture   config.CaptureConfig
	storage   storage.System
	creds     secrets.Provider
	sessions  capability.Launcher
	runs      runs.System
	retention *retention.Sweeper
	base      slog.Handler
	logger    *slog.Logger
}

// NewRunner creates a Runner from assembled infrastructure systems.
func NewRunner(
	capture config.CaptureConfig,
	store storage.System,
	creds secrets.Provider,
	sessions capability.Launcher,
	runSystem runs.System,
	sweeper *retention.Sweeper,
	base slog.Handler,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		capture:   capture,
		storage:   store,
		creds:     creds,
		sessions:  sessions,
		runs:      runSystem,
		retention: sweeper,
		base:      base,
		logger:    logger.With("system", "trigger"),
	}
}

// Run executes one capture run. If a run is already in flight it returns
// ErrBusy immediately instead of queueing. The run's report is recorded
// even when recording partially fails; persistence and retention issues
// never retract a produced report.
func (r *Runner) Run(ctx context.Context) (*workflow.Report, error) {
	if !r.mu.TryLock() {
		return nil, ErrBusy
	}
	defer r.mu.Unlock()

	runLog := workflow.NewRunLog(r.base)
	rt := &workflow.Runtime{
		Capture:  r.capture,
		Storage:  r.storage,
		Secrets:  r.creds,
		Sessions: r.sessions,
		Logger:   slog.New(runLog).With("system", "workflow"),
		RunLog:   runLog,
	}

	report, err := workflow.Execute(ctx, rt)
	if err != nil {
		return nil, err
	}

	if _, err := r.runs.Record(ctx, report); err != nil {
		r.logger.Error("record run failed", "run_id", report.RunID, "error", err)
	}

	if _, err := r.retention.Sweep(ctx, time.Now().UTC()); err != nil {
		r.logger.Warn("retention sweep failed", "error", err)
	}

	return report, nil
}
