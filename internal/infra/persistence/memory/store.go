// Package memory provides the in-memory object table shared by every
// persistence backend and usable on its own for tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"hbnb/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store keeps records keyed by Store Key. Save and Reload are no-ops; durable
// backends embed Store and override them.
type Store struct {
	mu      sync.RWMutex
	objects map[string]domain.Model
}

// NewStore returns an empty table.
func NewStore() *Store {
	return &Store{objects: make(map[string]domain.Model)}
}

// All returns a copy of the table. Records are shared, not cloned.
func (s *Store) All() map[string]domain.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Model, len(s.objects))
	for k, v := range s.objects {
		out[k] = v
	}
	return out
}

// Get returns the record stored under key.
func (s *Store) Get(key string) (domain.Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.objects[key]
	return m, ok
}

// New registers m; an existing entry under the same key is replaced.
func (s *Store) New(m domain.Model) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[domain.Key(m)] = m
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return false
	}
	delete(s.objects, key)
	return true
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Replace swaps the whole table for objects, keyed by their Store Keys.
func (s *Store) Replace(objects []domain.Model) {
	next := make(map[string]domain.Model, len(objects))
	for _, m := range objects {
		next[domain.Key(m)] = m
	}
	s.mu.Lock()
	s.objects = next
	s.mu.Unlock()
}

// Save is a no-op for the in-memory table.
func (s *Store) Save(context.Context) error { return nil }

// Reload is a no-op for the in-memory table.
func (s *Store) Reload(context.Context) error { return nil }

// Close is a no-op for the in-memory table.
func (s *Store) Close() error { return nil }
