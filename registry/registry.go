package registry

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"github.com/lixenwraith/vi-tactics/core"
)

// StableID is the permanent identity of an actor, used only as a deterministic tie-breaker
type StableID struct {
	GUID            uuid.UUID
	GenerationOrder uint32
}

// Less orders by generation order, GUID bytes break the (impossible in one registry) tie
func (s StableID) Less(o StableID) bool {
	if s.GenerationOrder != o.GenerationOrder {
		return s.GenerationOrder < o.GenerationOrder
	}
	for i := range s.GUID {
		if s.GUID[i] != o.GUID[i] {
			return s.GUID[i] < o.GUID[i]
		}
	}
	return false
}

// GUIDSource produces the GUID for a newly registered actor
type GUIDSource func(actor core.ActorID, generation uint32) uuid.UUID

// RandomGUIDs draws version 4 GUIDs
func RandomGUIDs(core.ActorID, uint32) uuid.UUID {
	return uuid.New()
}

// NamespacedGUIDs derives version 5 GUIDs from (actor, generation) under ns
// Identical registration sequences yield identical GUIDs, used for replays and tests
func NamespacedGUIDs(ns uuid.UUID) GUIDSource {
	return func(actor core.ActorID, generation uint32) uuid.UUID {
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[:4], uint32(actor))
		binary.BigEndian.PutUint32(buf[4:], generation)
		return uuid.NewSHA1(ns, buf[:])
	}
}

// Registry assigns every actor a (GUID, generation order) on first sight
// Generation orders are monotonic and never reused, even after Unregister
type Registry struct {
	mu      sync.RWMutex
	ids     map[core.ActorID]StableID
	next    uint32
	newGUID GUIDSource
}

// Option configures a Registry
type Option func(*Registry)

// WithGUIDSource overrides the default random GUID source
func WithGUIDSource(src GUIDSource) Option {
	return func(r *Registry) {
		if src != nil {
			r.newGUID = src
		}
	}
}

// New creates an empty registry, generation orders start at 1
func New(opts ...Option) *Registry {
	r := &Registry{
		ids:     make(map[core.ActorID]StableID),
		next:    1,
		newGUID: RandomGUIDs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register returns the actor's stable id, creating it on first call
func (r *Registry) Register(actor core.ActorID) StableID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[actor]; ok {
		return id
	}
	id := StableID{
		GUID:            r.newGUID(actor, r.next),
		GenerationOrder: r.next,
	}
	r.next++
	r.ids[actor] = id
	return id
}

// Unregister forgets the actor; its generation order is retired
func (r *Registry) Unregister(actor core.ActorID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, actor)
}

// Lookup returns the stable id of a registered actor
func (r *Registry) Lookup(actor core.ActorID) (StableID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[actor]
	return id, ok
}

// Len returns the number of registered actors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Compare orders two registered actors by generation order
// Unregistered actors sort after registered ones, then by handle
func (r *Registry) Compare(a, b core.ActorID) int {
	r.mu.RLock()
	ia, okA := r.ids[a]
	ib, okB := r.ids[b]
	r.mu.RUnlock()

	switch {
	case okA && okB:
		if ia.Less(ib) {
			return -1
		}
		if ib.Less(ia) {
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
