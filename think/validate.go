package think

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/navigation"
	"github.com/lixenwraith/vi-tactics/parameter"
)

var (
	// ErrOutOfRange is returned for targets beyond the ability's reach or off a straight line
	ErrOutOfRange = errors.New("think: target out of range")
	// ErrNotWalkable is returned when a step enters impassable terrain
	ErrNotWalkable = errors.New("think: terrain not walkable")
	// ErrCornerCut is returned for a diagonal step past a blocked shoulder
	ErrCornerCut = errors.New("think: diagonal cuts a corner")
	// ErrOccupied is returned when the target belongs to an actor that stays this slot
	ErrOccupied = errors.New("think: target held by a stationary actor")
)

// ValidateMove checks a Move or Dash from -> to
// Move reaches one cell, Dash a straight line of up to DashRange cells; every step must be
// walkable without cutting corners. Occupants that have not decided yet, or are leaving, are
// left to the resolver. Other kinds always pass
func ValidateMove(kind action.AbilityKind, from, to core.Cell, terrain navigation.Oracle, occ OccupancyView, pending *Ledger) error {
	if !kind.Moves() {
		return nil
	}

	steps := from.Chebyshev(to)
	reach := 1
	if kind == action.Dash {
		reach = parameter.DashRange
	}
	if steps == 0 || steps > reach {
		return fmt.Errorf("%v %v->%v: %w", kind, from, to, ErrOutOfRange)
	}

	dx, dy := to.Sub(from)
	if dx != 0 && dy != 0 && core.Abs(dx) != core.Abs(dy) {
		return fmt.Errorf("%v %v->%v: %w", kind, from, to, ErrOutOfRange)
	}

	dir := core.DirectionTo(from, to)
	cur := from
	for range steps {
		if terrain != nil && navigation.CutsCorner(terrain, cur, dir) {
			return fmt.Errorf("%v at %v: %w", kind, cur, ErrCornerCut)
		}
		cur = dir.Step(cur)
		if terrain != nil && !terrain.IsWalkable(cur) {
			return fmt.Errorf("%v at %v: %w", kind, cur, ErrNotWalkable)
		}
	}

	if occ != nil {
		if holder := occ.GetActorAtCell(to); holder != core.NoActor && pending.Stationary(to) {
			return fmt.Errorf("%v into %v held by %v: %w", kind, to, holder, ErrOccupied)
		}
	}
	return nil
}
