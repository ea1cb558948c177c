package status

import (
	"maps"
	"slices"
	"sync"
)

// MetricMap is a named set of metrics of one type
// Get allocates on first use under the write lock; returned pointers stay valid forever
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, creating it if absent
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	return ptr
}

// Lookup returns the metric for key without creating it
func (m *MetricMap[T]) Lookup(key string) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ptr, ok := m.items[key]
	return ptr, ok
}

// Keys returns the registered keys in sorted order
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}

// Range visits every metric in sorted key order
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	for _, k := range m.Keys() {
		if ptr, ok := m.Lookup(k); ok {
			fn(k, ptr)
		}
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
