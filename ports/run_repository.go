package ports

import (
	"context"

	"psimodal/domain/core"
	"psimodal/domain/run"
)

// RunRepository persists completed estimation runs
type RunRepository interface {
	SaveRun(ctx context.Context, r *run.Run) error
	GetRun(ctx context.Context, id core.RunID) (*run.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*run.Run, error)
}
