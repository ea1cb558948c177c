package think

import (
	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/parameter"
)

// ChaseThinker walks down the distance field toward the player and attacks when in reach
type ChaseThinker struct {
	AttackRange int  // Chebyshev reach, defaults to parameter.AttackRange
	Priority    int  // Base priority of produced intents
	Dash        bool // Dash two cells when the field descends in a straight line and the player is far
}

// NewChaseThinker creates a chaser with default reach and priority
func NewChaseThinker() *ChaseThinker {
	return &ChaseThinker{
		AttackRange: parameter.AttackRange,
		Priority:    parameter.ChaserPriority,
	}
}

// DecideIntent implements Thinker
func (c *ChaseThinker) DecideIntent(obs Observation) action.Intent {
	wait := action.WaitIntent(obs.Actor, obs.Cell, obs.Slot)
	if obs.Player == core.NoActor || obs.Player == obs.Actor {
		return wait
	}

	reach := c.AttackRange
	if reach <= 0 {
		reach = parameter.AttackRange
	}
	gap := obs.Cell.Chebyshev(obs.PlayerCell)
	if gap > 0 && gap <= reach {
		return action.Intent{
			Actor:         obs.Actor,
			CurrentCell:   obs.Cell,
			RequestedCell: obs.PlayerCell,
			Kind:          action.Attack,
			BasePriority:  c.Priority,
			TimeSlot:      obs.Slot,
			TargetActor:   obs.Player,
		}
	}

	if obs.Field == nil {
		return wait
	}
	next := obs.Field.NextStepTowardSource(obs.Cell)
	if next == obs.Cell {
		return wait
	}

	kind, target := action.Move, next
	if c.Dash && gap > reach+parameter.DashRange {
		if far := obs.Field.NextStepTowardSource(next); far != next &&
			core.DirectionTo(obs.Cell, next) == core.DirectionTo(next, far) &&
			ValidateMove(action.Dash, obs.Cell, far, obs.Terrain, obs.Occupancy, obs.Pending) == nil {
			kind, target = action.Dash, far
		}
	}

	if kind == action.Move && ValidateMove(action.Move, obs.Cell, next, obs.Terrain, obs.Occupancy, obs.Pending) != nil {
		return wait
	}

	return action.Intent{
		Actor:         obs.Actor,
		CurrentCell:   obs.Cell,
		RequestedCell: target,
		Kind:          kind,
		BasePriority:  c.Priority,
		TimeSlot:      obs.Slot,
	}
}
