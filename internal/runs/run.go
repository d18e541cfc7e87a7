// Package runs persists capture run outcomes. Each workflow execution
// records one row holding the headline counters plus the full report as
// JSONB for later inspection.
package runs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/postbox/pkg/repository"
)

// Run is a persisted capture run outcome.
type Run struct {
	ID             uuid.UUID       `json:"id"`
	RunDate        string          `json:"run_date"`
	Success        bool            `json:"success"`
	CandidatesSeen int             `json:"candidates_seen"`
	ImagesAccepted int             `json:"images_accepted"`
	ImagesStored   int             `json:"images_stored"`
	DeadlineHit    bool            `json:"deadline_hit"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	Report         json.RawMessage `json:"report"`
	CreatedAt      time.Time       `json:"created_at"`
}

const projection = `
	id, run_date, success, candidates_seen, images_accepted,
	images_stored, deadline_hit, elapsed_seconds, report, created_at`

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	var report []byte

	err := s.Scan(
		&r.ID,
		&r.RunDate,
		&r.Success,
		&r.CandidatesSeen,
		&r.ImagesAccepted,
		&r.ImagesStored,
		&r.DeadlineHit,
		&r.ElapsedSeconds,
		&report,
		&r.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}

	r.Report = json.RawMessage(report)
	return r, nil
}
