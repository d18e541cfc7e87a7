package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/postbox/pkg/pagination"
	"github.com/JaimeStill/postbox/pkg/repository"
	"github.com/JaimeStill/postbox/workflow"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a run repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "runs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, projection)

	items, err := repository.QueryMany(ctx, r.db, q, []any{page.PageSize, page.Offset()}, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q := fmt.Sprintf("SELECT %s FROM runs WHERE id = $1", projection)

	run, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) Record(ctx context.Context, report *workflow.Report) (*Run, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO runs(id, run_date, success, candidates_seen, images_accepted,
			images_stored, deadline_hit, elapsed_seconds, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, projection)

	args := []any{
		report.RunID,
		report.RunDate,
		report.Success,
		report.CandidatesSeen,
		report.ImagesAccepted,
		report.ImagesStored,
		report.DeadlineHit,
		report.ElapsedSeconds,
		payload,
	}

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRun)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run recorded",
		"id", run.ID,
		"run_date", run.RunDate,
		"success", run.Success,
		"stored", run.ImagesStored,
	)
	return &run, nil
}
