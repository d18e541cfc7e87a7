package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// EnumerateNode returns a state node that collects candidate mail images
// from the authenticated session. An empty page is a normal outcome; a
// query failure records an ENUMERATION error and routes the run to
// finalize with success withdrawn.
func EnumerateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		run, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("enumerate: %w", err)
		}

		candidates, err := run.Session.Candidates(ctx)
		if err != nil {
			rt.fail(ctx, run, StageEnumeration, false, "%v: %v", ErrEnumerateFailed, err)
		} else {
			run.Candidates = candidates
			rt.Logger.InfoContext(ctx, "enumerate node complete",
				"run_id", run.ID,
				"candidates", len(candidates),
			)
		}

		s = s.Set(KeyRun, *run)
		return s, nil
	})
}
