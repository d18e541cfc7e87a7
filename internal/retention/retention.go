// Package retention prunes date-partitioned captures once they age past
// the configured window. Partitions are discovered by listing object keys
// and parsing the leading date segment; keys that do not start with a
// date are left alone.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/postbox/pkg/formatting"
	"github.com/JaimeStill/postbox/pkg/storage"
)

// Sweeper deletes expired capture objects.
type Sweeper struct {
	storage storage.System
	days    int
	logger  *slog.Logger
}

// New creates a Sweeper retaining the most recent days of captures.
func New(store storage.System, days int, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		storage: store,
		days:    days,
		logger:  logger.With("system", "retention"),
	}
}

// Sweep deletes every object whose date partition is older than the
// retention window relative to now. Individual delete failures are logged
// and skipped so one stuck object cannot block the sweep.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	keys, err := s.storage.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list captures: %w", err)
	}

	cutoff := now.UTC().AddDate(0, 0, -s.days)
	deleted := 0

	for _, key := range keys {
		partition, ok := datePartition(key)
		if !ok || !partition.Before(cutoff) {
			continue
		}

		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("delete expired object failed", "key", key, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("retention sweep complete", "deleted", deleted, "cutoff", formatting.Date(cutoff))
	}
	return deleted, nil
}

// datePartition parses the leading path segment of key as a capture date.
func datePartition(key string) (time.Time, bool) {
	segment, _, ok := strings.Cut(key, "/")
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(formatting.DateLayout, segment)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
