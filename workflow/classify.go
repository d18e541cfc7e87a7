package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/formatting"
)

// ClassifyNode returns a state node that runs the two-stage filter over
// every candidate: a keyword pre-filter that rejects page chrome without
// an inference call, then a semantic inspection of the rendered element.
// A candidate is accepted only on positive evidence of a delivery
// address; inspection failures reject. Classification stops early when
// the soft deadline passes, leaving the remaining candidates unjudged.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		run, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		for _, cand := range run.Candidates {
			if time.Now().After(run.Deadline) {
				run.DeadlineHit = true
				rt.fail(ctx, run, StageDeadline, true,
					"time budget exhausted after %d of %d candidates",
					len(run.Verdicts), len(run.Candidates))
				break
			}

			verdict := rt.classify(ctx, run, cand)
			run.Verdicts = append(run.Verdicts, verdict)

			rt.Logger.InfoContext(ctx, "candidate classified",
				"run_id", run.ID,
				"ordinal", verdict.Ordinal,
				"accepted", verdict.Accepted,
				"reason", verdict.Reason,
			)
		}

		rt.Logger.InfoContext(ctx, "classify node complete",
			"run_id", run.ID,
			"judged", len(run.Verdicts),
			"accepted", len(run.Accepted()),
		)

		s = s.Set(KeyRun, *run)
		return s, nil
	})
}

func (rt *Runtime) classify(ctx context.Context, run *Run, cand capability.Candidate) Verdict {
	verdict := Verdict{
		Ordinal: cand.Ordinal,
		Source:  cand.Source,
	}

	locator := cand.Source + " " + cand.Alt
	if formatting.ContainsAny(locator, rt.Capture.UIKeywords) {
		verdict.Reason = ReasonUIElement
		return verdict
	}

	instruction := instrInspectImage(rt.Capture.PositiveToken, rt.Capture.NegativeToken)
	obs, err := run.Session.ActOn(ctx, instruction, cand.Element)
	if err != nil {
		verdict.Reason = ReasonClassifierError
		verdict.Observation = rt.redact(err.Error())
		rt.Logger.WarnContext(ctx, "candidate inspection failed",
			"run_id", run.ID,
			"ordinal", cand.Ordinal,
			"error", verdict.Observation,
		)
		return verdict
	}

	verdict.Observation = rt.redact(obs)
	verdict.Accepted, verdict.Reason = judge(obs, rt.Capture.PositiveToken, rt.Capture.NegativeToken, rt.Capture.AddressKeywords)
	return verdict
}

// judge interprets a semantic observation. A blank observation carries no
// evidence either way and rejects as a classifier error. The negative token
// is checked first so any address-like substring it carries cannot read as
// a positive keyword hit.
func judge(obs, positiveToken, negativeToken string, addressKeywords []string) (bool, Reason) {
	if strings.TrimSpace(obs) == "" {
		return false, ReasonClassifierError
	}

	upper := strings.ToUpper(obs)
	if strings.Contains(upper, strings.ToUpper(negativeToken)) {
		return false, ReasonNoAddress
	}
	if strings.Contains(upper, strings.ToUpper(positiveToken)) {
		return true, ReasonHasAddress
	}
	if formatting.ContainsAny(obs, addressKeywords) {
		return true, ReasonHasAddress
	}
	return false, ReasonNoAddress
}
