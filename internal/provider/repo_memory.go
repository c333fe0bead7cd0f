package provider

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory directory useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{providers: make(map[string]Provider)}
}

func (r *MemoryRepo) Put(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return Provider{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) GetByUserID(ctx context.Context, userID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return Provider{}, ErrNotFound
}
