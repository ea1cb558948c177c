package occupancy

import (
	"fmt"

	"github.com/lixenwraith/vi-tactics/core"
)

// Collision describes a move rejected while queuing or committing a batch
type Collision struct {
	Actor    core.ActorID
	Other    core.ActorID // NoActor when the rejection is not caused by another actor
	Cell     core.Cell
	Err      error
	Rejected bool
}

type pendingMove struct {
	actor    core.ActorID
	from, to core.Cell
}

// MoveBatch applies a set of executed moves atomically
// The final layout is validated as a whole so swaps and chains (A->B's cell, B->C) succeed
type MoveBatch struct {
	grid       *Grid
	moves      []pendingMove
	collisions []Collision
	queued     map[core.ActorID]struct{}
	committed  bool
}

// BeginMoves opens a batch against the grid
func (g *Grid) BeginMoves() *MoveBatch {
	return &MoveBatch{
		grid:   g,
		queued: make(map[core.ActorID]struct{}),
	}
}

// Move queues actor -> to, rejections are reported immediately and never applied
// Occupied targets are accepted here, only the final layout decides
func (b *MoveBatch) Move(actor core.ActorID, to core.Cell) Collision {
	g := b.grid
	g.mu.RLock()
	from, placed := g.positions[actor]
	_, moved := g.movedThis[actor]
	inPhase := g.inMovePhase
	g.mu.RUnlock()

	result := Collision{Actor: actor, Cell: to}
	_, dup := b.queued[actor]
	switch {
	case !placed:
		result.Err = ErrUnknownActor
	case dup || (inPhase && moved):
		result.Err = ErrAlreadyMoved
	}
	if result.Err != nil {
		result.Rejected = true
		b.collisions = append(b.collisions, result)
		return result
	}

	if from == to {
		return result
	}
	b.queued[actor] = struct{}{}
	b.moves = append(b.moves, pendingMove{actor: actor, from: from, to: to})
	return result
}

// Len returns the number of queued moves
func (b *MoveBatch) Len() int {
	return len(b.moves)
}

// Collisions returns every rejection seen so far
func (b *MoveBatch) Collisions() []Collision {
	return b.collisions
}

// Commit validates the final layout and applies all moves under one lock
// Moves whose target ends up held by a non-moving actor or by a second mover are dropped
// (and reported via Collisions); dropping cascades until the layout is consistent
func (b *MoveBatch) Commit() error {
	if b.committed {
		return fmt.Errorf("move batch already committed")
	}
	b.committed = true
	if len(b.moves) == 0 {
		return nil
	}

	g := b.grid
	g.mu.Lock()
	defer g.mu.Unlock()

	active := make([]bool, len(b.moves))
	for i := range active {
		active[i] = true
	}

	// Drop moves until every target is claimed exactly once and not held by a stayer
	for changed := true; changed; {
		changed = false
		leaving := make(map[core.ActorID]bool, len(b.moves))
		for i, m := range b.moves {
			if active[i] {
				leaving[m.actor] = true
			}
		}
		claimed := make(map[core.Cell]int, len(b.moves))
		for i, m := range b.moves {
			if !active[i] {
				continue
			}
			if occupant, ok := g.occupants[m.to]; ok && occupant != m.actor && !leaving[occupant] {
				active[i] = false
				changed = true
				b.collisions = append(b.collisions, Collision{
					Actor: m.actor, Other: occupant, Cell: m.to, Err: ErrOccupied, Rejected: true,
				})
				continue
			}
			if j, ok := claimed[m.to]; ok {
				active[i] = false
				changed = true
				b.collisions = append(b.collisions, Collision{
					Actor: m.actor, Other: b.moves[j].actor, Cell: m.to, Err: ErrOccupied, Rejected: true,
				})
				continue
			}
			claimed[m.to] = i
		}
	}

	// Two-pass apply: vacate all sources, then fill all targets
	for i, m := range b.moves {
		if active[i] && g.occupants[m.from] == m.actor {
			delete(g.occupants, m.from)
		}
	}
	for i, m := range b.moves {
		if !active[i] {
			continue
		}
		g.occupants[m.to] = m.actor
		g.positions[m.actor] = m.to
		if g.inMovePhase {
			g.movedThis[m.actor] = struct{}{}
		}
	}

	return nil
}

// Rollback discards all queued moves
func (b *MoveBatch) Rollback() {
	b.moves = nil
	b.collisions = nil
	b.committed = true
}

// String returns a string representation of the batch for debugging
func (b *MoveBatch) String() string {
	return fmt.Sprintf("MoveBatch{moves: %d, collisions: %d}", len(b.moves), len(b.collisions))
}
