// Package memory provides an in-process KeyValue, used for tests and the
// memory backend.
package memory

import (
	"context"
	"sync"

	"acorn/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items map[string]string
}

var _ storage.KeyValue = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string]string)}
}

// NewWith returns a store pre-populated with seed.
func NewWith(seed map[string]string) *Store {
	s := New()
	for k, v := range seed {
		s.items[k] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
