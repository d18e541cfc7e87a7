// Package capability defines the narrow interface over the page-automation
// capability that drives the mail portal. The capability executes
// natural-language instructions against live page state and returns an
// observation; it is the only non-deterministic dependency of the capture
// workflow, so everything above it is written against this interface and
// tested with deterministic stubs.
package capability

import (
	"context"
	"time"
)

// Handle identifies an element in the session's arena. Handles are owned
// by the session that produced them and are invalid once it closes.
type Handle int

// Candidate describes an on-page image element considered for capture.
// Element is only valid for the lifetime of the originating session.
type Candidate struct {
	Ordinal int    `json:"ordinal"`
	Source  string `json:"source"`
	Alt     string `json:"alt"`
	Element Handle `json:"-"`
}

// TraceEntry records a single instruction/observation exchange.
// Secret input is never traced.
type TraceEntry struct {
	At          time.Time `json:"at"`
	Instruction string    `json:"instruction"`
	Observation string    `json:"observation"`
}

// Session is an authenticated page-automation session. Page-mutating calls
// (Act, TypeSecret) share one page and must not be issued concurrently.
type Session interface {
	// Act executes a natural-language instruction against the current page
	// and returns the capability's observation.
	Act(ctx context.Context, instruction string) (string, error)

	// ActOn executes an instruction scoped to a single element, typically a
	// visual inspection that does not mutate page state.
	ActOn(ctx context.Context, instruction string, el Handle) (string, error)

	// TypeSecret injects text into the currently focused input through the
	// direct keyboard channel. The text never enters instruction content,
	// observations, or the trace.
	TypeSecret(ctx context.Context, text string) error

	// Candidates enumerates candidate mail images in page order,
	// deduplicated by source locator.
	Candidates(ctx context.Context) ([]Candidate, error)

	// CaptureElement returns a PNG screenshot of the element.
	CaptureElement(ctx context.Context, el Handle) ([]byte, error)

	// CaptureScreen returns a PNG screenshot of the full page.
	CaptureScreen(ctx context.Context) ([]byte, error)

	// Trace returns the instruction/observation exchanges issued so far.
	Trace() []TraceEntry

	// Close ends the session and invalidates all handles.
	Close() error
}

// Launcher opens fresh sessions. Each capture run opens exactly one
// session and closes it before the run ends.
type Launcher interface {
	Open(ctx context.Context) (Session, error)
}
