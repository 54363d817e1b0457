package config

import "sync"

// Store holds the current value of a facet that admins can change while the
// service runs. Values are replaced as a whole, never mutated in place.
type Store[T any] struct {
	mu sync.RWMutex
	v  T
}

func NewStore[T any](v T) *Store[T] { return &Store[T]{v: v} }

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}
