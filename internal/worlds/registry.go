// Package worlds reads the durable world catalog. The catalog is authored
// by world-management tooling elsewhere; the presence core treats each Get
// as a consistent snapshot and never writes on serving paths.
package worlds

import (
	"context"
	"errors"
	"sync"

	"github.com/holoverse/presence/internal/domain"
)

var ErrNotFound = errors.New("world not found")

type Registry interface {
	Get(ctx context.Context, id domain.WorldID) (*domain.World, error)
}

// MemoryRegistry is the in-process catalog used by tests and single-node
// development setups.
type MemoryRegistry struct {
	mu     sync.RWMutex
	worlds map[domain.WorldID]domain.World
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{worlds: make(map[domain.WorldID]domain.World)}
}

func (r *MemoryRegistry) Get(_ context.Context, id domain.WorldID) (*domain.World, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.worlds[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := w
	out.ModeratorIDs = cloneModerators(w.ModeratorIDs)
	return &out, nil
}

func (r *MemoryRegistry) Upsert(_ context.Context, w domain.World) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ModeratorIDs = cloneModerators(w.ModeratorIDs)
	r.worlds[w.ID] = w
	return nil
}

func cloneModerators(in map[domain.UserID]struct{}) map[domain.UserID]struct{} {
	if in == nil {
		return nil
	}
	out := make(map[domain.UserID]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}
