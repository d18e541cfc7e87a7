package workflow

import (
	"time"

	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/google/uuid"
)

const (
	KeyRun    = "capture_run"
	KeyReport = "capture_report"
)

// Reason categorizes a candidate verdict.
type Reason string

// Verdict reasons. Rejections carry the filter that produced them;
// classifier errors reject because acceptance requires positive evidence.
const (
	ReasonUIElement       Reason = "UI_ELEMENT"
	ReasonHasAddress      Reason = "HAS_ADDRESS"
	ReasonNoAddress       Reason = "NO_ADDRESS"
	ReasonClassifierError Reason = "CLASSIFIER_ERROR"
)

// Stage identifies where in the run an error was recorded.
type Stage string

// Run stages referenced by error records.
const (
	StageAuth           Stage = "AUTH"
	StageEnumeration    Stage = "ENUMERATION"
	StageClassification Stage = "CLASSIFICATION"
	StageUpload         Stage = "UPLOAD"
	StageDeadline       Stage = "DEADLINE"
)

// ArtifactKind distinguishes captures from diagnostics.
type ArtifactKind string

// Artifact kinds.
const (
	ArtifactMailImage  ArtifactKind = "MAIL_IMAGE"
	ArtifactLog        ArtifactKind = "LOG"
	ArtifactTrace      ArtifactKind = "TRACE"
	ArtifactScreenshot ArtifactKind = "SCREENSHOT"
	ArtifactDigest     ArtifactKind = "DIGEST"
)

// ArtifactStatus records the outcome of an upload.
type ArtifactStatus string

// Artifact statuses.
const (
	ArtifactStored ArtifactStatus = "STORED"
	ArtifactFailed ArtifactStatus = "FAILED"
)

// Verdict is the classification outcome for one enumerated candidate.
type Verdict struct {
	Ordinal     int    `json:"ordinal"`
	Source      string `json:"source"`
	Accepted    bool   `json:"accepted"`
	Reason      Reason `json:"reason"`
	Observation string `json:"observation,omitempty"`
}

// StoredArtifact describes one upload attempt sequence for an object.
type StoredArtifact struct {
	Kind     ArtifactKind   `json:"kind"`
	Key      string         `json:"key"`
	Attempts int            `json:"attempts"`
	Status   ArtifactStatus `json:"status"`
}

// ErrorRecord captures a degraded-path event. Recoverable marks errors the
// run absorbed and continued past; only pre-candidate failures (AUTH,
// ENUMERATION) pull the whole run down.
type ErrorRecord struct {
	Stage       Stage  `json:"stage"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// capture pairs an accepted verdict with its image bytes while the run is
// in flight. Images never enter the Report.
type capture struct {
	Verdict Verdict
	Image   []byte
}

// Run is the in-flight state threaded through the graph. It is stored in
// graph state by value; nodes extract it, mutate a copy, and set it back.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	StartedAt time.Time `json:"started_at"`
	// Deadline is the soft stop: the budget end minus the safety margin.
	Deadline    time.Time `json:"deadline"`
	DeadlineHit bool      `json:"deadline_hit"`

	SessionReady bool                   `json:"session_ready"`
	Candidates   []capability.Candidate `json:"candidates"`
	Verdicts     []Verdict              `json:"verdicts"`
	Artifacts    []StoredArtifact       `json:"artifacts"`
	Errors       []ErrorRecord          `json:"errors"`
	ImagesStored int                    `json:"images_stored"`

	// Session and captures live only for the duration of the run.
	Session  capability.Session `json:"-"`
	captures []capture
}

// Accepted returns the verdicts that passed both classification stages,
// in ordinal order.
func (r *Run) Accepted() []Verdict {
	var accepted []Verdict
	for _, v := range r.Verdicts {
		if v.Accepted {
			accepted = append(accepted, v)
		}
	}
	return accepted
}

// HasStageError reports whether an error was recorded for the stage.
func (r *Run) HasStageError(stage Stage) bool {
	for _, e := range r.Errors {
		if e.Stage == stage {
			return true
		}
	}
	return false
}

// Report is the single authoritative outcome of a capture run.
type Report struct {
	RunID          uuid.UUID        `json:"run_id"`
	RunDate        string           `json:"run_date"`
	Success        bool             `json:"success"`
	CandidatesSeen int              `json:"candidates_seen"`
	ImagesAccepted int              `json:"images_accepted"`
	ImagesStored   int              `json:"images_stored"`
	DeadlineHit    bool             `json:"deadline_hit"`
	Artifacts      []StoredArtifact `json:"artifacts"`
	Errors         []ErrorRecord    `json:"errors"`
	ElapsedSeconds float64          `json:"elapsed_seconds"`
	CompletedAt    time.Time        `json:"completed_at"`
}
