package resolver

import (
	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
)

// Reservations is the slice of the occupancy store reconciliation needs
type Reservations interface {
	Reserve(actor core.ActorID, cell core.Cell, turnID uint64) bool
	HoldOrigin(actor core.ActorID, turnID uint64) bool
	Commit(actor core.ActorID, turnID uint64)
	Release(actor core.ActorID)
	GetActorAtCell(cell core.Cell) core.ActorID
	GetActorCell(actor core.ActorID) (core.Cell, bool)
	IsSwap(a, b core.ActorID) bool
}

// Reconcile turns resolved actions into turn reservations on occ
// Movers into a cell whose occupant stays put are demoted, cascading along chains.
// A mover whose reservation is refused loses the race and waits.
// Swaps and chains of vacating actors are kept. Winners are committed
func (r *Resolver) Reconcile(actions []action.ResolvedAction, occ Reservations, turnID uint64) []action.ResolvedAction {
	out := make([]action.ResolvedAction, len(actions))
	copy(out, actions)

	for {
		r.demoteBlocked(out, occ)

		for i := range out {
			occ.Release(out[i].Actor)
		}
		for i := range out {
			if !out[i].Moving() {
				if !occ.HoldOrigin(out[i].Actor, turnID) {
					r.logger.Printf("[WARN] reconcile: origin hold refused for %v at %v turn %d", out[i].Actor, out[i].CurrentCell, turnID)
				}
			}
		}

		raced := false
		for i := range out {
			if !out[i].Moving() {
				continue
			}
			if !occ.Reserve(out[i].Actor, out[i].NextCell, turnID) {
				r.logger.Printf("[WARN] reconcile: reservation race lost by %v for %v turn %d", out[i].Actor, out[i].NextCell, turnID)
				out[i].Demote(action.ReasonReservationRace)
				raced = true
			}
		}
		if !raced {
			break
		}
	}

	for i := range out {
		a := &out[i]
		if a.IsWait {
			continue
		}
		occ.Commit(a.Actor, turnID)

		if a.Moving() {
			if other := occ.GetActorAtCell(a.NextCell); other != core.NoActor && occ.IsSwap(a.Actor, other) {
				a.Reason = action.ReasonSwap
			}
		}
		if a.Kind == action.Attack {
			if live, ok := occ.GetActorCell(a.Actor); ok {
				a.NextCell = live
			}
		}
	}
	return out
}

// demoteBlocked waits every mover whose target is held by an actor that does not leave
func (r *Resolver) demoteBlocked(out []action.ResolvedAction, occ Reservations) {
	for changed := true; changed; {
		changed = false
		leaving := make(map[core.ActorID]bool, len(out))
		for _, a := range out {
			if a.Moving() {
				leaving[a.Actor] = true
			}
		}
		for i := range out {
			if !out[i].Moving() {
				continue
			}
			occupant := occ.GetActorAtCell(out[i].NextCell)
			if occupant != core.NoActor && occupant != out[i].Actor && !leaving[occupant] {
				out[i].Demote(action.ReasonBlocked)
				changed = true
			}
		}
	}
}
