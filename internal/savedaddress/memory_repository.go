package savedaddress

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Address
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Address)}
}

func (r *memoryRepository) Insert(_ context.Context, addr Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[addr.ID]; exists {
		return errors.New("address exists")
	}
	r.storage[addr.ID] = addr
	return nil
}

func (r *memoryRepository) Update(_ context.Context, addr Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.storage[addr.ID]
	if !ok || existing.UserID != addr.UserID {
		return ErrNotFound
	}
	addr.CreatedAt = existing.CreatedAt
	r.storage[addr.ID] = addr
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Address
	for _, a := range r.storage {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.storage[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
