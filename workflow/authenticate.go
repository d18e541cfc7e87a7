package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/formatting"
)

// AuthenticateNode returns a state node that resolves portal credentials,
// opens a browser session, signs in, and confirms the mail section is on
// screen. Failure anywhere in the sequence records an unrecoverable AUTH
// error and leaves the run pointed at finalize; the node itself never
// returns an error, so the graph always completes.
func AuthenticateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		run, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("authenticate: %w", err)
		}

		if err := rt.authenticate(ctx, run); err != nil {
			rt.fail(ctx, run, StageAuth, isTransport(err), "%v", err)
			run.SessionReady = false
		} else {
			run.SessionReady = true
			rt.Logger.InfoContext(ctx, "authenticate node complete", "run_id", run.ID)
		}

		s = s.Set(KeyRun, *run)
		return s, nil
	})
}

// isTransport distinguishes timeouts from credential or marker failures.
// Transport failures are tagged recoverable; the next scheduled run is the
// retry boundary, so they still end this run. Credential failures stay
// unrecoverable to keep a stale secret from locking the account.
func isTransport(err error) bool {
	return errors.Is(err, capability.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// authenticate performs the sign-in sequence. Credentials travel only
// through TypeSecret; instruction text never carries them.
func (rt *Runtime) authenticate(ctx context.Context, run *Run) error {
	creds, err := rt.Secrets.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("%w: resolve credentials: %w", ErrAuthFailed, err)
	}
	rt.redactor = NewRedactor(creds.Username, creds.Password)

	session, err := rt.Sessions.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: open session: %w", ErrAuthFailed, err)
	}
	run.Session = session

	if _, err := session.Act(ctx, instrOpenSignIn); err != nil {
		return fmt.Errorf("%w: open sign-in form: %w", ErrAuthFailed, err)
	}
	if _, err := session.Act(ctx, instrFocusUsername); err != nil {
		return fmt.Errorf("%w: focus username field: %w", ErrAuthFailed, err)
	}
	if err := session.TypeSecret(ctx, creds.Username); err != nil {
		return fmt.Errorf("%w: enter username: %w", ErrAuthFailed, err)
	}
	if _, err := session.Act(ctx, instrFocusPassword); err != nil {
		return fmt.Errorf("%w: focus password field: %w", ErrAuthFailed, err)
	}
	if err := session.TypeSecret(ctx, creds.Password); err != nil {
		return fmt.Errorf("%w: enter password: %w", ErrAuthFailed, err)
	}
	if _, err := session.Act(ctx, instrSubmitSignIn); err != nil {
		return fmt.Errorf("%w: submit sign-in: %w", ErrAuthFailed, err)
	}

	// Confirm the portal accepted the credentials before navigating, so a
	// rejected sign-in is reported as such rather than as a missing mail
	// section.
	obs, err := session.Act(ctx, instrVerifySignedIn)
	if err != nil {
		return fmt.Errorf("%w: verify sign-in: %w", ErrAuthFailed, err)
	}
	if !formatting.ContainsAny(obs, rt.Capture.AuthMarkers) {
		return fmt.Errorf("%w: no signed-in marker after submit", ErrAuthFailed)
	}

	if _, err := session.Act(ctx, instrOpenMailSection); err != nil {
		return fmt.Errorf("%w: open mail section: %w", ErrAuthFailed, err)
	}

	obs, err = session.Act(ctx, instrVerifyMailSection)
	if err != nil {
		return fmt.Errorf("%w: verify mail section: %w", ErrAuthFailed, err)
	}
	if !formatting.ContainsAny(obs, rt.Capture.MailMarkers) {
		return fmt.Errorf("%w: mail section not visible after sign-in", ErrAuthFailed)
	}

	return nil
}
