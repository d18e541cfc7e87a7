package api

import (
	"github.com/JaimeStill/postbox/internal/retention"
	"github.com/JaimeStill/postbox/internal/runs"
	"github.com/JaimeStill/postbox/internal/trigger"
)

// Domain holds the domain systems that comprise the API. The Runner is
// shared with the scheduler so scheduled and on-demand runs serialize
// through the same lock.
type Domain struct {
	Runs   runs.System
	Runner *trigger.Runner
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	runSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	sweeper := retention.New(
		runtime.Storage,
		runtime.Capture.RetentionDays,
		runtime.Logger,
	)

	runner := trigger.NewRunner(
		runtime.Capture,
		runtime.Storage,
		runtime.Secrets,
		runtime.Sessions,
		runSystem,
		sweeper,
		runtime.Logger.Handler(),
		runtime.Logger,
	)

	return &Domain{
		Runs:   runSystem,
		Runner: runner,
	}
}
