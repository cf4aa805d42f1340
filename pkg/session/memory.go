package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	items map[string]Session
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Session)}
}

// Load returns a copy of the stored session.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.items[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		_ = m.Delete(context.Background(), id)
		return nil, ErrExpired
	}
	s.Values = maps.Clone(s.Values)
	return &s, nil
}

// Save stores a copy of the session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	stored := Session{
		ID:        s.ID,
		Name:      s.Name,
		Values:    maps.Clone(s.Values),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}

	m.mu.Lock()
	m.items[s.ID] = stored
	m.mu.Unlock()
	return nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ Store = (*MemoryStore)(nil)
