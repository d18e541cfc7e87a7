package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/lifecycle"
	"github.com/JaimeStill/postbox/pkg/storage"
	"github.com/JaimeStill/postbox/workflow"
)

type stubSecrets struct {
	creds secrets.Credentials
	err   error
}

func (s *stubSecrets) Credentials(ctx context.Context) (secrets.Credentials, error) {
	return s.creds, s.err
}

type stubSession struct {
	mu          sync.Mutex
	candidates  []capability.Candidate
	enumErr     error
	observation string
	actErr      error
	inspect     func(el capability.Handle) (string, error)
	inspectWait time.Duration
	captureErr  error
	actOnCalls  int
	typed       []string
	trace       []capability.TraceEntry
	closed      bool
}

func (s *stubSession) Act(ctx context.Context, instruction string) (string, error) {
	if s.actErr != nil {
		return "", s.actErr
	}
	s.mu.Lock()
	s.trace = append(s.trace, capability.TraceEntry{
		At:          time.Now().UTC(),
		Instruction: instruction,
		Observation: s.observation,
	})
	s.mu.Unlock()
	return s.observation, nil
}

func (s *stubSession) ActOn(ctx context.Context, instruction string, el capability.Handle) (string, error) {
	s.mu.Lock()
	s.actOnCalls++
	s.mu.Unlock()

	if s.inspectWait > 0 {
		time.Sleep(s.inspectWait)
	}
	if s.inspect != nil {
		return s.inspect(el)
	}
	return "HAS_ADDRESS the recipient line is visible", nil
}

func (s *stubSession) TypeSecret(ctx context.Context, text string) error {
	s.mu.Lock()
	s.typed = append(s.typed, text)
	s.mu.Unlock()
	return nil
}

func (s *stubSession) Candidates(ctx context.Context) ([]capability.Candidate, error) {
	if s.enumErr != nil {
		return nil, s.enumErr
	}
	return s.candidates, nil
}

func (s *stubSession) CaptureElement(ctx context.Context, el capability.Handle) ([]byte, error) {
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	return testPNG(), nil
}

func (s *stubSession) CaptureScreen(ctx context.Context) ([]byte, error) {
	return testPNG(), nil
}

func (s *stubSession) Trace() []capability.TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]capability.TraceEntry, len(s.trace))
	copy(out, s.trace)
	return out
}

func (s *stubSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type stubLauncher struct {
	session capability.Session
	err     error
}

func (l *stubLauncher) Open(ctx context.Context) (capability.Session, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

type memStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failPuts int
}

func (m *memStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *memStorage) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPuts > 0 {
		m.failPuts--
		return errors.New("transient storage failure")
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0)
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func testPNG() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func mustCapture() config.CaptureConfig {
	cfg := config.CaptureConfig{
		TimeBudget:   "10s",
		SafetyMargin: "50ms",
		Schedule:     config.ScheduleOff,
	}
	if err := cfg.Finalize(); err != nil {
		panic(err)
	}
	return cfg
}

func testCapture(t *testing.T) config.CaptureConfig {
	t.Helper()
	return mustCapture()
}

func testRuntime(capture config.CaptureConfig, session *stubSession, store *memStorage, creds secrets.Provider) *workflow.Runtime {
	runLog := workflow.NewRunLog(slog.NewTextHandler(io.Discard, nil))
	return &workflow.Runtime{
		Capture:  capture,
		Storage:  store,
		Secrets:  creds,
		Sessions: &stubLauncher{session: session},
		Logger:   slog.New(runLog),
		RunLog:   runLog,
	}
}

func readySession() *stubSession {
	return &stubSession{
		observation: "the mail dashboard shows today's preview images",
	}
}

func okSecrets() *stubSecrets {
	return &stubSecrets{
		creds: secrets.Credentials{Username: "carrier", Password: "letters"},
	}
}

func artifactsOfKind(report *workflow.Report, kind workflow.ArtifactKind) []workflow.StoredArtifact {
	var out []workflow.StoredArtifact
	for _, a := range report.Artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
