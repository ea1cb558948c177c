// Package think produces one intent per actor per time slot
package think

import (
	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/navigation"
)

// FieldView is the read side of the per-turn distance field
type FieldView interface {
	Distance(c core.Cell) int
	NextStepTowardSource(from core.Cell) core.Cell
}

// OccupancyView answers who stands where right now
type OccupancyView interface {
	GetActorAtCell(c core.Cell) core.ActorID
}

// Observation is everything a thinker may look at for one decision
type Observation struct {
	Actor      core.ActorID
	Cell       core.Cell
	PlayerCell core.Cell
	Player     core.ActorID // NoActor when the board has no player
	TurnID     uint64
	Slot       int

	Field     FieldView
	Occupancy OccupancyView
	Terrain   navigation.Oracle
	Pending   *Ledger // Intents already decided this slot
}

// Thinker decides an actor's intent for one slot
type Thinker interface {
	DecideIntent(obs Observation) action.Intent
}

// ThinkerFunc adapts a plain function to Thinker
type ThinkerFunc func(obs Observation) action.Intent

func (f ThinkerFunc) DecideIntent(obs Observation) action.Intent {
	return f(obs)
}

// Idle always waits
var Idle Thinker = ThinkerFunc(func(obs Observation) action.Intent {
	return action.WaitIntent(obs.Actor, obs.Cell, obs.Slot)
})

// Ledger collects the intents decided so far in one slot
type Ledger struct {
	intents    []action.Intent
	stationary map[core.Cell]core.ActorID
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{stationary: make(map[core.Cell]core.ActorID)}
}

// Record appends a decided intent
func (l *Ledger) Record(in action.Intent) {
	l.intents = append(l.intents, in)
	if !in.Kind.Moves() {
		l.stationary[in.CurrentCell] = in.Actor
	}
}

// Stationary reports whether cell belongs to an actor already decided to stay this slot
func (l *Ledger) Stationary(c core.Cell) bool {
	if l == nil {
		return false
	}
	_, ok := l.stationary[c]
	return ok
}

// Intents returns the recorded intents in decision order
func (l *Ledger) Intents() []action.Intent {
	return l.intents
}

// Len returns the number of recorded intents
func (l *Ledger) Len() int {
	return len(l.intents)
}

// Reset empties the ledger for the next slot
func (l *Ledger) Reset() {
	l.intents = l.intents[:0]
	clear(l.stationary)
}
