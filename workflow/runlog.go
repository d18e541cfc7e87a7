package workflow

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// RunLog is a slog.Handler that forwards records to an inner handler while
// capturing a text rendering of every line, so a run's log can be uploaded
// as a diagnostic artifact when the run ends.
type RunLog struct {
	inner   slog.Handler
	capture slog.Handler
	buf     *lockedBuffer
}

// NewRunLog wraps inner with line capture.
func NewRunLog(inner slog.Handler) *RunLog {
	buf := &lockedBuffer{}
	return &RunLog{
		inner:   inner,
		capture: slog.NewTextHandler(buf, nil),
		buf:     buf,
	}
}

// Bytes returns a copy of the captured log lines.
func (h *RunLog) Bytes() []byte {
	return h.buf.bytes()
}

func (h *RunLog) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RunLog) Handle(ctx context.Context, rec slog.Record) error {
	if err := h.inner.Handle(ctx, rec.Clone()); err != nil {
		return err
	}
	return h.capture.Handle(ctx, rec)
}

func (h *RunLog) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RunLog{
		inner:   h.inner.WithAttrs(attrs),
		capture: h.capture.WithAttrs(attrs),
		buf:     h.buf,
	}
}

func (h *RunLog) WithGroup(name string) slog.Handler {
	return &RunLog{
		inner:   h.inner.WithGroup(name),
		capture: h.capture.WithGroup(name),
		buf:     h.buf,
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}
