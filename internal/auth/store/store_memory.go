package store

import (
	"context"
	"sync"
)

// In-memory stores keep the default single-process setup lightweight and
// testable. They intentionally favor clarity over performance.

// MemoryTransient is the default TransientStore.
type MemoryTransient struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryTransient() *MemoryTransient {
	return &MemoryTransient{values: make(map[string]string)}
}

func (s *MemoryTransient) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryTransient) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (s *MemoryTransient) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// MemoryDurable is a DurableStore for tests and single-run demos. It does
// not survive restarts; use the redis or postgres backends for that.
type MemoryDurable struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryDurable() *MemoryDurable {
	return &MemoryDurable{values: make(map[string][]byte)}
}

func (s *MemoryDurable) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryDurable) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryDurable) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
