package runs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/postbox/pkg/pagination"
	"github.com/JaimeStill/postbox/workflow"
)

// System defines the public contract for run record operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Run], error)
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	Record(ctx context.Context, report *workflow.Report) (*Run, error)
}
