package store

import (
	"context"
	"sync"
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// MemoryStore is a process-local Store, useful for tests and for embedders
// that do not need state to survive a restart.
type MemoryStore struct {
	m       sync.RWMutex
	entries map[string]string
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.entries, key)
	return nil
}
