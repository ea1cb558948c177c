package action

import (
	"fmt"

	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/parameter"
	"github.com/lixenwraith/vi-tactics/registry"
)

// AbilityKind is the closed set of intent kinds
type AbilityKind uint8

const (
	Wait AbilityKind = iota
	Move
	Dash
	Attack
	kindCount
)

var kindNames = [kindCount]string{"Wait", "Move", "Dash", "Attack"}

var kindTiers = [kindCount]int{
	Wait:   parameter.TierWait,
	Move:   parameter.TierMove,
	Dash:   parameter.TierDash,
	Attack: parameter.TierAttack,
}

func (k AbilityKind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("AbilityKind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Tier returns the coarse resolution class, unknown kinds rank as Wait
func (k AbilityKind) Tier() int {
	if k >= kindCount {
		return parameter.TierWait
	}
	return kindTiers[k]
}

// Moves reports whether the kind relocates the actor
func (k AbilityKind) Moves() bool {
	return k == Move || k == Dash
}

// ParseKind maps a name to its kind, used by config and scenario files
func ParseKind(s string) (AbilityKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return AbilityKind(i), true
		}
	}
	return Wait, false
}

// Intent is an actor's desired action for one time slot, immutable once submitted
type Intent struct {
	Actor         core.ActorID
	CurrentCell   core.Cell
	RequestedCell core.Cell
	Kind          AbilityKind
	BasePriority  int
	TimeSlot      int
	TargetActor   core.ActorID // NoActor when the ability has no actor target
}

// WaitIntent is the stay-put intent for actor at cell
func WaitIntent(actor core.ActorID, cell core.Cell, slot int) Intent {
	return Intent{
		Actor:         actor,
		CurrentCell:   cell,
		RequestedCell: cell,
		Kind:          Wait,
		TimeSlot:      slot,
	}
}

// ClaimCell is the cell the actor will stand on if the intent wins:
// the requested cell for movement kinds, the current cell otherwise
func (in Intent) ClaimCell() core.Cell {
	if in.Kind.Moves() {
		return in.RequestedCell
	}
	return in.CurrentCell
}

// ReservationEntry is an intent enriched with the keys used for conflict resolution
type ReservationEntry struct {
	Intent
	StableID          registry.StableID
	Tier              int
	DistanceReduction int
	GenerationOrder   uint32
}

// BucketKey groups entries competing for one cell in one slot
type BucketKey struct {
	TimeSlot int
	Cell     core.Cell
}

// Key returns the entry's bucket
func (e ReservationEntry) Key() BucketKey {
	return BucketKey{TimeSlot: e.TimeSlot, Cell: e.ClaimCell()}
}

// Reason records why a resolved action came out the way it did
type Reason uint8

const (
	ReasonWon Reason = iota
	ReasonSwap
	ReasonOutranked
	ReasonLowerTier
	ReasonBlocked
	ReasonReservationRace
	ReasonAttackHold
	ReasonWaitRequested
	ReasonPlayerRejected
	ReasonDispatchFailed
	reasonCount
)

var reasonNames = [reasonCount]string{
	"won", "swap", "outranked", "lower-tier", "blocked",
	"reservation-race", "attack-hold", "wait-requested", "player-rejected",
	"dispatch-failed",
}

func (r Reason) String() string {
	if r >= reasonCount {
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
	return reasonNames[r]
}

// ResolvedAction is the single authoritative outcome of one intent
// IsWait means the actor neither moves nor acts this slot and keeps its current cell
type ResolvedAction struct {
	Actor       core.ActorID
	CurrentCell core.Cell
	NextCell    core.Cell
	TargetCell  core.Cell    // Requested cell as submitted, the attack target for Attack
	TargetActor core.ActorID // Passed through to the ability system
	Kind        AbilityKind  // Final kind, Wait when demoted
	IsWait      bool
	TimeSlot    int
	Reason      Reason
}

// Demote turns the action into a stay-put wait with the given reason
func (a *ResolvedAction) Demote(reason Reason) {
	a.IsWait = true
	a.NextCell = a.CurrentCell
	a.Kind = Wait
	a.Reason = reason
}

// Moving reports whether the action relocates its actor
func (a ResolvedAction) Moving() bool {
	return !a.IsWait && a.NextCell != a.CurrentCell
}

func (a ResolvedAction) String() string {
	if a.IsWait {
		return fmt.Sprintf("%v wait@%v (%v)", a.Actor, a.CurrentCell, a.Reason)
	}
	return fmt.Sprintf("%v %v %v->%v target=%v (%v)", a.Actor, a.Kind, a.CurrentCell, a.NextCell, a.TargetCell, a.Reason)
}
