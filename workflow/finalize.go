package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/postbox/pkg/archive"
	"github.com/JaimeStill/postbox/pkg/formatting"
)

// FinalizeNode returns a state node that closes out the run: it uploads
// diagnostic artifacts and the PDF digest best-effort, closes the session,
// and synthesizes the single authoritative Report. Every path through the
// graph ends here.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		run, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if rt.Capture.UploadLogsEnabled() {
			rt.uploadDiagnostics(ctx, run)
		}
		rt.uploadDigest(ctx, run)

		if run.Session != nil {
			if err := run.Session.Close(); err != nil {
				rt.Logger.WarnContext(ctx, "session close failed",
					"run_id", run.ID,
					"error", rt.redact(err.Error()),
				)
			}
		}

		report := buildReport(run)
		rt.Logger.InfoContext(ctx, "finalize node complete",
			"run_id", run.ID,
			"success", report.Success,
			"candidates", report.CandidatesSeen,
			"accepted", report.ImagesAccepted,
			"stored", report.ImagesStored,
			"elapsed_seconds", report.ElapsedSeconds,
		)

		s = s.Set(KeyRun, *run)
		s = s.Set(KeyReport, *report)
		return s, nil
	})
}

// uploadDiagnostics writes the instruction trace, the captured run log,
// and, when the run stored nothing, a full-page screenshot. Diagnostic
// failures mark the artifact FAILED but never degrade the run outcome.
func (rt *Runtime) uploadDiagnostics(ctx context.Context, run *Run) {
	stamp := formatting.Stamp(time.Now().UTC())

	if run.Session != nil {
		if trace := run.Session.Trace(); len(trace) > 0 {
			for i := range trace {
				trace[i].Instruction = rt.redact(trace[i].Instruction)
				trace[i].Observation = rt.redact(trace[i].Observation)
			}
			if data, err := json.MarshalIndent(trace, "", "  "); err == nil {
				key := fmt.Sprintf("%s/logs/trace_%s.json", run.Date, stamp)
				rt.uploadArtifact(ctx, run, ArtifactTrace, key, data, "application/json")
			}
		}
	}

	if rt.RunLog != nil {
		if lines := rt.RunLog.Bytes(); len(lines) > 0 {
			data := lines
			if rt.redactor != nil {
				data = rt.redactor.RedactBytes(lines)
			}
			key := fmt.Sprintf("%s/logs/run_%s.log", run.Date, stamp)
			rt.uploadArtifact(ctx, run, ArtifactLog, key, data, "text/plain")
		}
	}

	if run.Session != nil && run.SessionReady && run.ImagesStored == 0 {
		if screen, err := run.Session.CaptureScreen(ctx); err == nil {
			key := fmt.Sprintf("%s/logs/screen_%s.png", run.Date, stamp)
			rt.uploadArtifact(ctx, run, ArtifactScreenshot, key, screen, "image/png")
		} else {
			rt.Logger.WarnContext(ctx, "fallback screenshot failed",
				"run_id", run.ID,
				"error", rt.redact(err.Error()),
			)
		}
	}
}

// uploadDigest renders the run's captured images into one PDF per day.
func (rt *Runtime) uploadDigest(ctx context.Context, run *Run) {
	if len(run.captures) == 0 {
		return
	}

	images := make([][]byte, len(run.captures))
	for i, c := range run.captures {
		images[i] = c.Image
	}

	data, err := archive.Digest(images)
	if err != nil {
		rt.Logger.WarnContext(ctx, "digest render failed",
			"run_id", run.ID,
			"error", err.Error(),
		)
		return
	}

	key := fmt.Sprintf("%s/digest_%s.pdf", run.Date, formatting.Stamp(time.Now().UTC()))
	rt.uploadArtifact(ctx, run, ArtifactDigest, key, data, "application/pdf")
}

func (rt *Runtime) uploadArtifact(ctx context.Context, run *Run, kind ArtifactKind, key string, data []byte, contentType string) {
	attempts, err := rt.upload(ctx, key, data, contentType, run.metadata(rt))

	artifact := StoredArtifact{
		Kind:     kind,
		Key:      key,
		Attempts: attempts,
		Status:   ArtifactStored,
	}
	if err != nil {
		artifact.Status = ArtifactFailed
		rt.Logger.WarnContext(ctx, "diagnostic upload failed",
			"run_id", run.ID,
			"kind", kind,
			"key", key,
			"error", rt.redact(err.Error()),
		)
	}
	run.Artifacts = append(run.Artifacts, artifact)
}

// buildReport derives the run outcome. Only failures at or before
// enumeration withdraw success; per-candidate, upload, and deadline
// degradation report as partial success.
func buildReport(run *Run) *Report {
	now := time.Now().UTC()
	return &Report{
		RunID:          run.ID,
		RunDate:        run.Date,
		Success:        !run.HasStageError(StageAuth) && !run.HasStageError(StageEnumeration),
		CandidatesSeen: len(run.Candidates),
		ImagesAccepted: len(run.Accepted()),
		ImagesStored:   run.ImagesStored,
		DeadlineHit:    run.DeadlineHit,
		Artifacts:      run.Artifacts,
		Errors:         run.Errors,
		ElapsedSeconds: now.Sub(run.StartedAt).Seconds(),
		CompletedAt:    now,
	}
}
