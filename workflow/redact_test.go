package workflow_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/workflow"
)

func TestRedactor(t *testing.T) {
	r := workflow.NewRedactor("hunter2", "carrier@example.com")

	got := r.Redact("sign-in failed for carrier@example.com with hunter2 at step 3")
	if strings.Contains(got, "hunter2") || strings.Contains(got, "carrier@example.com") {
		t.Errorf("secrets survived redaction: %q", got)
	}
	if !strings.Contains(got, "[redacted]") {
		t.Errorf("missing redaction marker: %q", got)
	}

	if got := r.Redact("nothing secret here"); got != "nothing secret here" {
		t.Errorf("clean text altered: %q", got)
	}
}

func TestRedactorEmptyValues(t *testing.T) {
	r := workflow.NewRedactor("", "")
	if got := r.Redact("some text"); got != "some text" {
		t.Errorf("empty secrets altered text: %q", got)
	}
}

// TestNoCredentialLeakage drives full runs with randomized credentials and
// injected failures whose messages embed the credential values, then scans
// everything the run externalizes for those values.
func TestNoCredentialLeakage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		user := rapid.StringMatching(`u[A-Za-z0-9]{15}`).Draw(t, "user")
		pass := rapid.StringMatching(`p[A-Za-z0-9]{15}`).Draw(t, "pass")
		mode := rapid.IntRange(0, 2).Draw(t, "mode")

		session := readySession()
		switch mode {
		case 0:
			session.actErr = fmt.Errorf("portal rejected %s:%s", user, pass)
		case 1:
			session.candidates = []capability.Candidate{
				{Ordinal: 0, Source: "https://portal/images/mail/1.jpg", Alt: "Mail Piece", Element: 0},
			}
			session.inspect = func(el capability.Handle) (string, error) {
				return "", fmt.Errorf("inspection failed for account %s (%s)", user, pass)
			}
		case 2:
			session.enumErr = fmt.Errorf("query failed while signed in as %s/%s", user, pass)
		}

		store := &memStorage{}
		creds := &stubSecrets{creds: secrets.Credentials{Username: user, Password: pass}}
		rt := testRuntime(mustCapture(), session, store, creds)

		report, err := workflow.Execute(context.Background(), rt)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		payload, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("marshal report: %v", err)
		}
		assertClean(t, "report", string(payload), user, pass)

		for key, data := range store.objects {
			assertClean(t, "object "+key, string(data), user, pass)
		}
	})
}

func assertClean(t *rapid.T, where, content, user, pass string) {
	if strings.Contains(content, user) {
		t.Fatalf("%s contains username", where)
	}
	if strings.Contains(content, pass) {
		t.Fatalf("%s contains password", where)
	}
}
