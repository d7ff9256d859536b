package registry

import (
	"context"
	"sync"
)

// MemoryStore is an in-process registry used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Put registers a code, optionally with a stored photo reference.
func (s *MemoryStore) Put(code, photo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[code] = Entry{Exists: true, Photo: photo}
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, code string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[code], nil
}
