package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/storage"
)

// Runtime bundles the dependencies that workflow nodes require. One Runtime
// serves one run: the redactor and run log accumulate per-run state.
type Runtime struct {
	Capture  config.CaptureConfig
	Storage  storage.System
	Secrets  secrets.Provider
	Sessions capability.Launcher
	Logger   *slog.Logger
	RunLog   *RunLog

	redactor *Redactor
}

// fail records a redacted error on the run and logs it.
func (rt *Runtime) fail(ctx context.Context, run *Run, stage Stage, recoverable bool, format string, args ...any) {
	msg := rt.redact(fmt.Sprintf(format, args...))
	run.Errors = append(run.Errors, ErrorRecord{
		Stage:       stage,
		Message:     msg,
		Recoverable: recoverable,
	})
	rt.Logger.ErrorContext(ctx, "run error",
		"stage", stage,
		"recoverable", recoverable,
		"error", msg,
	)
}

func (rt *Runtime) redact(s string) string {
	if rt.redactor == nil {
		return s
	}
	return rt.redactor.Redact(s)
}
