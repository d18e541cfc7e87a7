package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/workflow"
)

func TestExecuteCaptureRun(t *testing.T) {
	session := readySession()
	session.candidates = []capability.Candidate{
		{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
		{Ordinal: 1, Source: "https://portal/assets/logo.png", Alt: "site logo", Element: 1},
		{Ordinal: 2, Source: "https://portal/images/mail/2.jpg", Alt: "Mail Piece", Element: 2},
		{Ordinal: 3, Source: "https://portal/images/mail/3.jpg", Alt: "Mail Piece", Element: 3},
		{Ordinal: 4, Source: "https://portal/images/mail/4.jpg", Alt: "Mail Piece", Element: 4},
	}
	session.inspect = func(el capability.Handle) (string, error) {
		switch el {
		case 0:
			return "HAS_ADDRESS the envelope shows a full delivery address", nil
		case 2:
			return "NO_ADDRESS this is the blank back of a postcard", nil
		case 3:
			return "The RECIPIENT line and street are clearly legible", nil
		default:
			return "", errors.New("vision endpoint unavailable")
		}
	}

	store := &memStorage{}
	rt := testRuntime(testCapture(t), session, store, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if !report.Success {
		t.Error("expected success")
	}
	if report.CandidatesSeen != 5 {
		t.Errorf("candidates_seen: got %d, want 5", report.CandidatesSeen)
	}
	if report.ImagesAccepted != 2 {
		t.Errorf("images_accepted: got %d, want 2", report.ImagesAccepted)
	}
	if report.ImagesStored != 2 {
		t.Errorf("images_stored: got %d, want 2", report.ImagesStored)
	}

	// the logo candidate must never reach the semantic stage
	if session.actOnCalls != 4 {
		t.Errorf("semantic inspections: got %d, want 4", session.actOnCalls)
	}

	date := report.RunDate
	mail := artifactsOfKind(report, workflow.ArtifactMailImage)
	if len(mail) != 2 {
		t.Fatalf("mail artifacts: got %d, want 2", len(mail))
	}
	for i, want := range []string{
		fmt.Sprintf("%s/mail_0_", date),
		fmt.Sprintf("%s/mail_3_", date),
	} {
		if !strings.HasPrefix(mail[i].Key, want) {
			t.Errorf("artifact %d key %q does not start with %q", i, mail[i].Key, want)
		}
		if mail[i].Status != workflow.ArtifactStored {
			t.Errorf("artifact %d status: got %s, want STORED", i, mail[i].Status)
		}
		if mail[i].Attempts != 1 {
			t.Errorf("artifact %d attempts: got %d, want 1", i, mail[i].Attempts)
		}
	}

	if got := artifactsOfKind(report, workflow.ArtifactTrace); len(got) != 1 {
		t.Errorf("trace artifacts: got %d, want 1", len(got))
	} else if !strings.HasPrefix(got[0].Key, date+"/logs/") {
		t.Errorf("trace key %q not under %s/logs/", got[0].Key, date)
	}
	if got := artifactsOfKind(report, workflow.ArtifactLog); len(got) != 1 {
		t.Errorf("log artifacts: got %d, want 1", len(got))
	}
	if got := artifactsOfKind(report, workflow.ArtifactDigest); len(got) != 1 {
		t.Errorf("digest artifacts: got %d, want 1", len(got))
	}
	if got := artifactsOfKind(report, workflow.ArtifactScreenshot); len(got) != 0 {
		t.Errorf("screenshot artifacts: got %d, want 0", len(got))
	}

	if len(report.Errors) != 0 {
		t.Errorf("errors: got %v, want none", report.Errors)
	}
	if !session.closed {
		t.Error("session not closed")
	}
	if len(session.typed) != 2 {
		t.Errorf("typed secrets: got %d, want 2", len(session.typed))
	}
}

func TestExecuteAuthFailure(t *testing.T) {
	tests := []struct {
		name            string
		creds           *stubSecrets
		session         *stubSession
		wantRecoverable bool
	}{
		{
			name:    "credential resolution fails",
			creds:   &stubSecrets{err: errors.New("vault unreachable")},
			session: readySession(),
		},
		{
			name:  "sign-in fails",
			creds: okSecrets(),
			session: &stubSession{
				actErr: errors.New("portal rejected sign-in"),
			},
		},
		{
			name:  "credentials rejected at submit",
			creds: okSecrets(),
			session: &stubSession{
				observation: "the sign-in form is still requesting credentials",
			},
		},
		{
			name:  "mail section never appears",
			creds: okSecrets(),
			session: &stubSession{
				observation: "an account settings page is visible",
			},
		},
		{
			name:  "portal times out",
			creds: okSecrets(),
			session: &stubSession{
				actErr: fmt.Errorf("%w: sign-in page never loaded", capability.ErrTimeout),
			},
			wantRecoverable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := testRuntime(testCapture(t), tt.session, &memStorage{}, tt.creds)

			report, err := workflow.Execute(context.Background(), rt)
			if err != nil {
				t.Fatalf("execute failed: %v", err)
			}

			if report.Success {
				t.Error("expected failure")
			}
			if report.CandidatesSeen != 0 {
				t.Errorf("candidates_seen: got %d, want 0", report.CandidatesSeen)
			}

			var auth []workflow.ErrorRecord
			for _, e := range report.Errors {
				if e.Stage == workflow.StageAuth {
					auth = append(auth, e)
				}
			}
			if len(auth) != 1 {
				t.Fatalf("auth errors: got %d, want 1", len(auth))
			}
			if auth[0].Recoverable != tt.wantRecoverable {
				t.Errorf("recoverable: got %v, want %v", auth[0].Recoverable, tt.wantRecoverable)
			}
		})
	}
}

func TestExecuteEmptyDay(t *testing.T) {
	session := readySession()
	store := &memStorage{}
	rt := testRuntime(testCapture(t), session, store, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if !report.Success {
		t.Error("expected success on empty day")
	}
	if report.ImagesAccepted != 0 || report.ImagesStored != 0 {
		t.Errorf("expected zero captures, got accepted=%d stored=%d",
			report.ImagesAccepted, report.ImagesStored)
	}
	if got := artifactsOfKind(report, workflow.ArtifactMailImage); len(got) != 0 {
		t.Errorf("mail artifacts: got %d, want 0", len(got))
	}
	if got := artifactsOfKind(report, workflow.ArtifactScreenshot); len(got) != 1 {
		t.Errorf("screenshot artifacts: got %d, want 1", len(got))
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors: got %v, want none", report.Errors)
	}
	if !session.closed {
		t.Error("session not closed")
	}
}

func TestExecuteEnumerationFailure(t *testing.T) {
	session := readySession()
	session.enumErr = errors.New("page query failed")
	rt := testRuntime(testCapture(t), session, &memStorage{}, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if report.Success {
		t.Error("expected failure on enumeration error")
	}

	found := false
	for _, e := range report.Errors {
		if e.Stage == workflow.StageEnumeration {
			found = true
		}
	}
	if !found {
		t.Error("missing ENUMERATION error record")
	}
	if !session.closed {
		t.Error("session not closed")
	}
}

func TestExecuteUploadRetry(t *testing.T) {
	session := readySession()
	session.candidates = []capability.Candidate{
		{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
	}

	store := &memStorage{failPuts: 2}
	rt := testRuntime(testCapture(t), session, store, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	mail := artifactsOfKind(report, workflow.ArtifactMailImage)
	if len(mail) != 1 {
		t.Fatalf("mail artifacts: got %d, want 1", len(mail))
	}
	if mail[0].Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", mail[0].Attempts)
	}
	if mail[0].Status != workflow.ArtifactStored {
		t.Errorf("status: got %s, want STORED", mail[0].Status)
	}
	if report.ImagesStored != 1 {
		t.Errorf("images_stored: got %d, want 1", report.ImagesStored)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors: got %v, want none", report.Errors)
	}
}

func TestExecuteUploadExhausted(t *testing.T) {
	session := readySession()
	session.candidates = []capability.Candidate{
		{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
	}

	store := &memStorage{failPuts: 1 << 30}
	rt := testRuntime(testCapture(t), session, store, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	mail := artifactsOfKind(report, workflow.ArtifactMailImage)
	if len(mail) != 1 {
		t.Fatalf("mail artifacts: got %d, want 1", len(mail))
	}
	if mail[0].Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", mail[0].Attempts)
	}
	if mail[0].Status != workflow.ArtifactFailed {
		t.Errorf("status: got %s, want FAILED", mail[0].Status)
	}
	if report.ImagesStored != 0 {
		t.Errorf("images_stored: got %d, want 0", report.ImagesStored)
	}

	// capture degradation is absorbed, not fatal
	if !report.Success {
		t.Error("upload failure should not fail the run")
	}

	found := false
	for _, e := range report.Errors {
		if e.Stage == workflow.StageUpload && e.Recoverable {
			found = true
		}
	}
	if !found {
		t.Error("missing recoverable UPLOAD error record")
	}
}

func TestExecuteCaptureFailure(t *testing.T) {
	session := readySession()
	session.candidates = []capability.Candidate{
		{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
	}
	session.captureErr = errors.New("element detached")

	rt := testRuntime(testCapture(t), session, &memStorage{}, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	// an accepted candidate still yields its MAIL_IMAGE artifact, marked FAILED
	mail := artifactsOfKind(report, workflow.ArtifactMailImage)
	if len(mail) != 1 {
		t.Fatalf("mail artifacts: got %d, want 1", len(mail))
	}
	if mail[0].Status != workflow.ArtifactFailed {
		t.Errorf("status: got %s, want FAILED", mail[0].Status)
	}
	if mail[0].Attempts != 0 {
		t.Errorf("attempts: got %d, want 0", mail[0].Attempts)
	}
	if report.ImagesAccepted != 1 || report.ImagesStored != 0 {
		t.Errorf("counters: accepted=%d stored=%d, want 1/0", report.ImagesAccepted, report.ImagesStored)
	}
	if !report.Success {
		t.Error("capture failure should not fail the run")
	}

	found := false
	for _, e := range report.Errors {
		if e.Stage == workflow.StageUpload && e.Recoverable {
			found = true
		}
	}
	if !found {
		t.Error("missing recoverable UPLOAD error record")
	}
}

func TestExecuteSoftDeadline(t *testing.T) {
	cfg := testCapture(t)
	cfg.TimeBudget = "1s"
	cfg.SafetyMargin = "950ms"

	session := readySession()
	session.inspectWait = 100 * time.Millisecond
	session.candidates = []capability.Candidate{
		{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
		{Ordinal: 1, Source: "https://portal/images/mail/2.jpg", Alt: "Mail Piece", Element: 1},
		{Ordinal: 2, Source: "https://portal/images/mail/3.jpg", Alt: "Mail Piece", Element: 2},
	}

	store := &memStorage{}
	rt := testRuntime(cfg, session, store, okSecrets())

	report, err := workflow.Execute(context.Background(), rt)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if !report.DeadlineHit {
		t.Error("expected deadline hit")
	}
	if !report.Success {
		t.Error("deadline stop should report partial success")
	}
	if report.CandidatesSeen != 3 {
		t.Errorf("candidates_seen: got %d, want 3", report.CandidatesSeen)
	}

	found := false
	for _, e := range report.Errors {
		if e.Stage == workflow.StageDeadline && e.Recoverable {
			found = true
		}
	}
	if !found {
		t.Error("missing recoverable DEADLINE error record")
	}
}
