package ports

import (
	"context"

	"gollh/domain/core"
	"gollh/domain/run"
)

// SweepResultRepository persists sweep summaries. Persistence of trial
// results is outside the analysis core; this boundary exists so the sweep
// service can hand results off without knowing the storage.
type SweepResultRepository interface {
	SaveSweep(ctx context.Context, summary *run.SweepSummary) error
	GetSweep(ctx context.Context, id core.SweepID) (*run.SweepSummary, error)
	ListSweeps(ctx context.Context, limit int) ([]*run.SweepSummary, error)
}
