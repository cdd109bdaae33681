package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	hash      []byte
	expiresAt time.Time
	misses    int
}

// MemoryStore keeps codes in process memory. Expired entries are dropped
// lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]entry
}

// NewMemoryStore builds an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, entries: make(map[string]entry)}
}

func (m *MemoryStore) Save(_ context.Context, mobile string, hash []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[mobile] = entry{hash: append([]byte(nil), hash...), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, mobile string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(mobile)
	if !ok {
		return nil, ErrNotFound
	}
	return e.hash, nil
}

func (m *MemoryStore) Fail(_ context.Context, mobile string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(mobile)
	if !ok {
		return 0, ErrNotFound
	}
	e.misses++
	m.entries[mobile] = e
	return e.misses, nil
}

func (m *MemoryStore) Delete(_ context.Context, mobile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, mobile)
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(mobile string) (entry, bool) {
	e, ok := m.entries[mobile]
	if !ok {
		return entry{}, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, mobile)
		return entry{}, false
	}
	return e, true
}
