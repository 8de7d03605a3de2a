package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gollh/domain/core"
	"gollh/domain/run"
	"gollh/ports"
)

// SweepRepository is an in-memory SweepResultRepository, used when no
// database is configured and by tests.
type SweepRepository struct {
	mu     sync.RWMutex
	sweeps map[core.SweepID]*run.SweepSummary
}

// NewSweepRepository creates an empty in-memory repository.
func NewSweepRepository() *SweepRepository {
	return &SweepRepository{sweeps: make(map[core.SweepID]*run.SweepSummary)}
}

// SaveSweep stores a copy of the summary.
func (r *SweepRepository) SaveSweep(ctx context.Context, summary *run.SweepSummary) error {
	if summary == nil {
		return fmt.Errorf("cannot save nil sweep summary")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *summary
	r.sweeps[summary.SweepID] = &copied
	return nil
}

// GetSweep retrieves one sweep summary by ID.
func (r *SweepRepository) GetSweep(ctx context.Context, id core.SweepID) (*run.SweepSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.sweeps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSweepNotFound, id)
	}
	copied := *summary
	return &copied, nil
}

// ListSweeps returns the most recent sweep summaries.
func (r *SweepRepository) ListSweeps(ctx context.Context, limit int) ([]*run.SweepSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]*run.SweepSummary, 0, len(r.sweeps))
	for _, s := range r.sweeps {
		copied := *s
		summaries = append(summaries, &copied)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[j].CreatedAt.Before(summaries[i].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

var _ ports.SweepResultRepository = (*SweepRepository)(nil)
