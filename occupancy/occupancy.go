package occupancy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lixenwraith/vi-tactics/core"
)

var (
	// ErrOccupied is returned when a cell already holds a different actor
	ErrOccupied = errors.New("occupancy: cell occupied")
	// ErrUnknownActor is returned for actors not placed on the grid
	ErrUnknownActor = errors.New("occupancy: unknown actor")
	// ErrAlreadyMoved is returned for a second move of one actor inside a move phase
	ErrAlreadyMoved = errors.New("occupancy: actor already moved this phase")
)

// Reservation is a provisional, turn-scoped claim on a cell
type Reservation struct {
	Owner      core.ActorID
	TurnID     uint64
	Committed  bool
	OriginHold bool // Claim on the owner's own current cell (staying put)
}

// Grid is the single source of truth for who stands where and who reserved what
// All mutation goes through its methods, the maps are never exposed
type Grid struct {
	mu sync.RWMutex

	// Ground truth, changed only by executed moves
	occupants map[core.Cell]core.ActorID
	positions map[core.ActorID]core.Cell

	// Turn-scoped reservation table, at most one cell per actor
	reservations map[core.Cell]Reservation
	reservedBy   map[core.ActorID]core.Cell

	// Move-phase bracket
	inMovePhase bool
	movedThis   map[core.ActorID]struct{}
}

// New creates an empty occupancy grid
func New() *Grid {
	return &Grid{
		occupants:    make(map[core.Cell]core.ActorID),
		positions:    make(map[core.ActorID]core.Cell),
		reservations: make(map[core.Cell]Reservation),
		reservedBy:   make(map[core.ActorID]core.Cell),
		movedThis:    make(map[core.ActorID]struct{}),
	}
}

// --- Occupancy ---

// Place puts an actor on the grid, moving it if already placed
// Returns ErrOccupied if another actor stands on cell
func (g *Grid) Place(actor core.ActorID, cell core.Cell) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.occupants[cell]; ok && existing != actor {
		return fmt.Errorf("%w: %v holds %v", ErrOccupied, cell, existing)
	}
	if old, ok := g.positions[actor]; ok {
		delete(g.occupants, old)
	}
	g.occupants[cell] = actor
	g.positions[actor] = cell
	return nil
}

// Remove takes an actor off the grid and drops its reservation
func (g *Grid) Remove(actor core.ActorID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if pos, ok := g.positions[actor]; ok {
		delete(g.occupants, pos)
		delete(g.positions, actor)
	}
	g.releaseLocked(actor)
	delete(g.movedThis, actor)
}

// IsCellOccupied reports whether any actor physically stands on cell
func (g *Grid) IsCellOccupied(cell core.Cell) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.occupants[cell]
	return ok
}

// GetActorAtCell returns the occupant of cell, NoActor if empty
func (g *Grid) GetActorAtCell(cell core.Cell) core.ActorID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.occupants[cell]
}

// GetActorCell returns where an actor stands
func (g *Grid) GetActorCell(actor core.ActorID) (core.Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.positions[actor]
	return c, ok
}

// Count returns the number of placed actors
func (g *Grid) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.positions)
}

// --- Reservations ---

// Reserve claims cell for actor in turnID
// Fails if a different actor holds a current-turn reservation on cell
// Stale reservations on the cell are overwritten, the actor's previous claim is released
func (g *Grid) Reserve(actor core.ActorID, cell core.Cell, turnID uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reserveLocked(actor, cell, turnID, false)
}

// HoldOrigin reserves the actor's own current cell so nobody may move into it this turn
func (g *Grid) HoldOrigin(actor core.ActorID, turnID uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos, ok := g.positions[actor]
	if !ok {
		return false
	}
	return g.reserveLocked(actor, pos, turnID, true)
}

func (g *Grid) reserveLocked(actor core.ActorID, cell core.Cell, turnID uint64, origin bool) bool {
	if r, ok := g.reservations[cell]; ok && r.TurnID == turnID && r.Owner != actor {
		return false
	}
	if old, ok := g.reservedBy[actor]; ok && old != cell {
		delete(g.reservations, old)
	}
	if r, ok := g.reservations[cell]; ok && r.Owner != actor {
		delete(g.reservedBy, r.Owner) // Stale claim from an older turn
	}
	g.reservations[cell] = Reservation{
		Owner:      actor,
		TurnID:     turnID,
		OriginHold: origin,
	}
	g.reservedBy[actor] = cell
	return true
}

// Commit marks the actor's current-turn reservation as the authoritative winner
// Idempotent, no-op without a matching reservation
func (g *Grid) Commit(actor core.ActorID, turnID uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cell, ok := g.reservedBy[actor]
	if !ok {
		return
	}
	r := g.reservations[cell]
	if r.TurnID != turnID {
		return
	}
	r.Committed = true
	g.reservations[cell] = r
}

// Release drops the actor's reservation, if any
func (g *Grid) Release(actor core.ActorID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releaseLocked(actor)
}

func (g *Grid) releaseLocked(actor core.ActorID) {
	if cell, ok := g.reservedBy[actor]; ok {
		delete(g.reservations, cell)
		delete(g.reservedBy, actor)
	}
}

// ReleaseTurn drops every reservation made in turnID, returns the count
func (g *Grid) ReleaseTurn(turnID uint64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropLocked(func(r Reservation) bool { return r.TurnID == turnID })
}

// PurgeOutdated removes every reservation whose turn differs from currentTurnID, returns the count
func (g *Grid) PurgeOutdated(currentTurnID uint64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropLocked(func(r Reservation) bool { return r.TurnID != currentTurnID })
}

func (g *Grid) dropLocked(match func(Reservation) bool) int {
	n := 0
	for cell, r := range g.reservations {
		if !match(r) {
			continue
		}
		delete(g.reservations, cell)
		if g.reservedBy[r.Owner] == cell {
			delete(g.reservedBy, r.Owner)
		}
		n++
	}
	return n
}

// GetReservedCellForActor returns the actor's reserved cell
func (g *Grid) GetReservedCellForActor(actor core.ActorID) (core.Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.reservedBy[actor]
	return c, ok
}

// ReservationAt returns the reservation on cell
func (g *Grid) ReservationAt(cell core.Cell) (Reservation, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.reservations[cell]
	return r, ok
}

// ReservationCount returns the size of the reservation table
func (g *Grid) ReservationCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.reservations)
}

// IsSwap reports whether a and b reserved each other's current cells, a valid exchange
func (g *Grid) IsSwap(a, b core.ActorID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if a == b {
		return false
	}
	posA, okA := g.positions[a]
	posB, okB := g.positions[b]
	resA, okRA := g.reservedBy[a]
	resB, okRB := g.reservedBy[b]
	return okA && okB && okRA && okRB && resA == posB && resB == posA
}

// --- Move phase ---

// BeginMovePhase opens a scope in which each actor may move at most once
func (g *Grid) BeginMovePhase() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inMovePhase = true
	clear(g.movedThis)
}

// EndMovePhase closes the scope opened by BeginMovePhase
func (g *Grid) EndMovePhase() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inMovePhase = false
	clear(g.movedThis)
}

// InMovePhase reports whether a move-phase scope is open
func (g *Grid) InMovePhase() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.inMovePhase
}

// HasMovedThisPhase reports whether actor already committed a move in the open scope
func (g *Grid) HasMovedThisPhase(actor core.ActorID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.movedThis[actor]
	return ok
}
