package actor

import (
	"slices"
	"sync"

	"github.com/lixenwraith/vi-tactics/core"
)

// Store is a generic handle-keyed container
// Uses sparse set pattern: map for lookup, dense handle slice for iteration
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[core.ActorID]T
	handles []core.ActorID
}

// NewStore creates an empty store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		items:   make(map[core.ActorID]T),
		handles: make([]core.ActorID, 0, 64),
	}
}

// Set inserts or updates the value for id
func (s *Store[T]) Set(id core.ActorID, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		s.handles = append(s.handles, id)
	}
	s.items[id] = val
}

// Get retrieves the value for id
func (s *Store[T]) Get(id core.ActorID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.items[id]
	return val, ok
}

// Update applies fn to the stored value in place, false if id is absent
func (s *Store[T]) Update(id core.ActorID, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.items[id]
	if !ok {
		return false
	}
	fn(&val)
	s.items[id] = val
	return true
}

// Remove deletes id
func (s *Store[T]) Remove(id core.ActorID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return
	}
	delete(s.items, id)
	for i, h := range s.handles {
		if h == id {
			s.handles[i] = s.handles[len(s.handles)-1]
			s.handles = s.handles[:len(s.handles)-1]
			break
		}
	}
}

// RemoveBatch deletes multiple handles in a single compaction pass
func (s *Store[T]) RemoveBatch(ids []core.ActorID) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toRemove := make(map[core.ActorID]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := s.items[id]; exists {
			toRemove[id] = struct{}{}
			delete(s.items, id)
		}
	}
	if len(toRemove) == 0 {
		return
	}

	writeIdx := 0
	for _, h := range s.handles {
		if _, remove := toRemove[h]; !remove {
			s.handles[writeIdx] = h
			writeIdx++
		}
	}
	s.handles = s.handles[:writeIdx]
}

// Has reports whether id is stored
func (s *Store[T]) Has(id core.ActorID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// Handles returns all stored handles in ascending order
func (s *Store[T]) Handles() []core.ActorID {
	s.mu.RLock()
	result := make([]core.ActorID, len(s.handles))
	copy(result, s.handles)
	s.mu.RUnlock()

	slices.Sort(result)
	return result
}

// Count returns the number of stored values
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handles)
}

// Clear removes everything
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[core.ActorID]T)
	s.handles = make([]core.ActorID, 0, 64)
}
