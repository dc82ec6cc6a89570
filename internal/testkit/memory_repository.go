package testkit

import (
	"context"
	"sort"
	"sync"

	"psimodal/domain/core"
	"psimodal/domain/run"
	"psimodal/ports"
)

// InMemoryRunRepository is a ports.RunRepository backed by a map, for tests
// and for serving without a database
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*run.Run
}

// NewInMemoryRunRepository creates an empty in-memory repository
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*run.Run)}
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)

// SaveRun stores a run
func (r *InMemoryRunRepository) SaveRun(_ context.Context, rec *run.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[rec.ID] = rec
	return nil
}

// GetRun retrieves a run by ID
func (r *InMemoryRunRepository) GetRun(_ context.Context, id core.RunID) (*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.runs[id]
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}
	return rec, nil
}

// ListRuns returns runs newest first with pagination
func (r *InMemoryRunRepository) ListRuns(_ context.Context, limit, offset int) ([]*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*run.Run, 0, len(r.runs))
	for _, rec := range r.runs {
		all = append(all, rec)
	}
	sort.Slice(all, func(a, b int) bool {
		return all[b].CreatedAt.Before(all[a].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
