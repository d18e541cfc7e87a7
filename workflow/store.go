package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/postbox/pkg/formatting"
)

const maxUploadAttempts = 3

// StoreNode returns a state node that captures each accepted candidate and
// uploads it under the run's date partition. Element captures are
// serialized against the session; uploads run concurrently with bounded
// workers. Every accepted candidate yields exactly one MAIL_IMAGE artifact,
// FAILED when its capture or upload could not complete, and per-candidate
// failures are absorbed as recoverable UPLOAD errors so the remaining
// captures still land.
func StoreNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		run, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("store: %w", err)
		}

		rt.storeAccepted(ctx, run)

		rt.Logger.InfoContext(ctx, "store node complete",
			"run_id", run.ID,
			"captured", len(run.captures),
			"stored", run.ImagesStored,
		)

		s = s.Set(KeyRun, *run)
		return s, nil
	})
}

// storeAccepted renders and uploads every accepted candidate. Results land
// in a slice indexed by accepted position so artifacts are recorded in
// ordinal order regardless of upload completion order.
func (rt *Runtime) storeAccepted(ctx context.Context, run *Run) {
	accepted := run.Accepted()
	if len(accepted) == 0 {
		return
	}

	stamp := formatting.Stamp(time.Now().UTC())
	artifacts := make([]StoredArtifact, len(accepted))
	failures := make([]error, len(accepted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.Capture.UploadWorkers)

	for i, v := range accepted {
		key := fmt.Sprintf("%s/mail_%d_%s.png", run.Date, v.Ordinal, stamp)
		artifacts[i] = StoredArtifact{
			Kind:   ArtifactMailImage,
			Key:    key,
			Status: ArtifactFailed,
		}

		// Element rendering shares the session page and stays serial.
		cand := run.Candidates[v.Ordinal]
		img, err := run.Session.CaptureElement(ctx, cand.Element)
		if err != nil {
			failures[i] = fmt.Errorf("capture candidate %d: %w", v.Ordinal, err)
			continue
		}
		run.captures = append(run.captures, capture{Verdict: v, Image: img})

		g.Go(func() error {
			attempts, err := rt.upload(gctx, key, img, "image/png", run.metadata(rt))
			artifacts[i].Attempts = attempts
			if err != nil {
				failures[i] = fmt.Errorf("upload %s: %w", key, err)
				return nil
			}
			artifacts[i].Status = ArtifactStored
			return nil
		})
	}
	g.Wait()

	for i, art := range artifacts {
		run.Artifacts = append(run.Artifacts, art)
		if failures[i] != nil {
			rt.fail(ctx, run, StageUpload, true, "%v", failures[i])
			continue
		}
		run.ImagesStored++
	}
}

// upload writes one object with bounded exponential backoff. The attempt
// count is reported even on failure.
func (rt *Runtime) upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (int, error) {
	attempts := 0
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			attempts++
			if err := rt.Storage.Put(ctx, key, data, contentType, metadata); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, nil
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxUploadAttempts),
	)
	return attempts, err
}

func (r *Run) metadata(rt *Runtime) map[string]string {
	return map[string]string{
		"capture_date": r.Date,
		"source":       rt.Capture.SourceTag,
		"run_id":       r.ID.String(),
	}
}
