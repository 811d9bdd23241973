// SPDX-License-Identifier: MIT

// Package session provides the key-value store backing the per-session
// collections of the facade. The store holds raw JSON payloads keyed by a
// caller-chosen discriminator; its lifetime is owned by whoever constructs
// the facade, one store per logical user session.
package session

import (
	"context"
	"sync"
)

// Store is a minimal session-scoped key-value store.
type Store interface {
	// Get retrieves a value. The second return reports whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value, overwriting any previous one.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a value.
	Delete(ctx context.Context, key string) error
	// Clear removes all values held by this session.
	Clear(ctx context.Context) error
}

// memoryStore is the in-process implementation of Store.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.entries[key] = cp
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	return nil
}

// noopStore never stores anything. It is selected in debug mode, where every
// read must hit the wrapped API.
type noopStore struct{}

// NewNoopStore creates a store that doesn't store anything.
func NewNoopStore() Store {
	return &noopStore{}
}

func (noopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Set(context.Context, string, []byte) error         { return nil }
func (noopStore) Delete(context.Context, string) error              { return nil }
func (noopStore) Clear(context.Context) error                       { return nil }
