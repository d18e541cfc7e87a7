package runs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/postbox/internal/runs"
	"github.com/JaimeStill/postbox/pkg/pagination"
	"github.com/JaimeStill/postbox/pkg/routes"
	"github.com/JaimeStill/postbox/workflow"
)

type stubSystem struct {
	runs    []runs.Run
	findErr error
	listErr error
}

func (s *stubSystem) Handler() *runs.Handler { return nil }

func (s *stubSystem) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[runs.Run], error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	result := pagination.NewPageResult(s.runs, len(s.runs), page.Page, page.PageSize)
	return &result, nil
}

func (s *stubSystem) Find(ctx context.Context, id uuid.UUID) (*runs.Run, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, runs.ErrNotFound
}

func (s *stubSystem) Record(ctx context.Context, report *workflow.Report) (*runs.Run, error) {
	return nil, nil
}

func testMux(t *testing.T, sys runs.System) *http.ServeMux {
	t.Helper()

	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("pagination finalize failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := runs.NewHandler(sys, logger, cfg)

	mux := http.NewServeMux()
	routes.Register(mux, handler.Routes())
	return mux
}

func TestHandlerList(t *testing.T) {
	sys := &stubSystem{
		runs: []runs.Run{
			{ID: uuid.New(), RunDate: "2026-08-22", Success: true, ImagesStored: 3},
			{ID: uuid.New(), RunDate: "2026-08-21", Success: false},
		},
	}

	req := httptest.NewRequest("GET", "/runs?page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	testMux(t, sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var result pagination.PageResult[runs.Run]
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(result.Data) != 2 {
		t.Errorf("data: got %d runs, want 2", len(result.Data))
	}
	if result.Total != 2 {
		t.Errorf("total: got %d, want 2", result.Total)
	}
}

func TestHandlerListFailure(t *testing.T) {
	sys := &stubSystem{listErr: errors.New("connection refused")}

	req := httptest.NewRequest("GET", "/runs", nil)
	rec := httptest.NewRecorder()
	testMux(t, sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	id := uuid.New()
	sys := &stubSystem{
		runs: []runs.Run{{ID: id, RunDate: "2026-08-22", Success: true}},
	}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/runs/" + id.String(), http.StatusOK},
		{"missing", "/runs/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/runs/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			testMux(t, sys).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

var _ runs.System = (*stubSystem)(nil)
