// Package actor holds the live actors of a board behind integer handles
package actor

import (
	"errors"
	"sync/atomic"

	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/think"
)

// ErrNotFound is returned for handles not present in the arena
var ErrNotFound = errors.New("actor: not found")

// Actor is one participant of the turn loop
type Actor struct {
	ID      core.ActorID
	Name    string
	Speed   int // Time slots per turn, acts in slots 0..Speed-1
	Player  bool
	Facing  core.Direction
	Thinker think.Thinker
}

// ActsIn reports whether the actor takes part in the given slot
func (a Actor) ActsIn(slot int) bool {
	return slot < max(a.Speed, 1)
}

// Arena owns actor records, a removed actor is simply absent
type Arena struct {
	store *Store[Actor]
	next  atomic.Uint32
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{store: NewStore[Actor]()}
}

// Spawn assigns a fresh handle and stores the actor, handles are never reused
func (a *Arena) Spawn(rec Actor) core.ActorID {
	id := core.ActorID(a.next.Add(1))
	rec.ID = id
	if rec.Speed <= 0 {
		rec.Speed = 1
	}
	if rec.Thinker == nil {
		rec.Thinker = think.Idle
	}
	a.store.Set(id, rec)
	return id
}

// Despawn removes the actor
func (a *Arena) Despawn(id core.ActorID) {
	a.store.Remove(id)
}

// Get returns the actor for id
func (a *Arena) Get(id core.ActorID) (Actor, bool) {
	return a.store.Get(id)
}

// Face updates the actor's facing
func (a *Arena) Face(id core.ActorID, dir core.Direction) error {
	if !a.store.Update(id, func(rec *Actor) { rec.Facing = dir }) {
		return ErrNotFound
	}
	return nil
}

// Live returns every actor in ascending handle order
func (a *Arena) Live() []Actor {
	ids := a.store.Handles()
	out := make([]Actor, 0, len(ids))
	for _, id := range ids {
		if rec, ok := a.store.Get(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Player returns the lowest-handle player actor
func (a *Arena) Player() (Actor, bool) {
	for _, rec := range a.Live() {
		if rec.Player {
			return rec, true
		}
	}
	return Actor{}, false
}

// Len returns the number of live actors
func (a *Arena) Len() int {
	return a.store.Count()
}
