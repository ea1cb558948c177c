package think

import (
	"sync"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/parameter"
)

// Command is a host-submitted player order
type Command struct {
	Kind        action.AbilityKind
	Target      core.Cell
	TargetActor core.ActorID
}

// InputThinker replays the last submitted command once, then waits
// Submit is safe to call from the host goroutine while a turn runs
type InputThinker struct {
	mu       sync.Mutex
	cmd      Command
	has      bool
	Priority int
}

// NewInputThinker creates a player thinker with the player priority
func NewInputThinker() *InputThinker {
	return &InputThinker{Priority: parameter.PlayerPriority}
}

// Submit replaces any pending command
func (p *InputThinker) Submit(cmd Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmd = cmd
	p.has = true
}

// Peek returns the pending command without consuming it
func (p *InputThinker) Peek() (Command, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd, p.has
}

// Discard drops the pending command
func (p *InputThinker) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.has = false
}

// PredictDestination returns where the pending command would put the player
func (p *InputThinker) PredictDestination(from core.Cell) core.Cell {
	cmd, ok := p.Peek()
	if !ok || !cmd.Kind.Moves() {
		return from
	}
	return cmd.Target
}

// DecideIntent implements Thinker, consuming the pending command
func (p *InputThinker) DecideIntent(obs Observation) action.Intent {
	p.mu.Lock()
	cmd, ok := p.cmd, p.has
	p.has = false
	p.mu.Unlock()

	if !ok || cmd.Kind == action.Wait {
		return action.WaitIntent(obs.Actor, obs.Cell, obs.Slot)
	}
	in := action.Intent{
		Actor:         obs.Actor,
		CurrentCell:   obs.Cell,
		RequestedCell: cmd.Target,
		Kind:          cmd.Kind,
		BasePriority:  p.Priority,
		TimeSlot:      obs.Slot,
		TargetActor:   cmd.TargetActor,
	}
	if cmd.Kind.Moves() && ValidateMove(cmd.Kind, obs.Cell, cmd.Target, obs.Terrain, obs.Occupancy, obs.Pending) != nil {
		return action.WaitIntent(obs.Actor, obs.Cell, obs.Slot)
	}
	return in
}
