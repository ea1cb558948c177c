package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/lixenwraith/vi-tactics/event"
	"github.com/lixenwraith/vi-tactics/status"
)

// transitions lists the legal successors of every phase
var transitions = map[event.Phase][]event.Phase{
	event.PhaseNone:            {event.PhaseTurnInit},
	event.PhaseTurnInit:        {event.PhasePlayerWaitInput, event.PhaseNone},
	event.PhasePlayerWaitInput: {event.PhaseObservation, event.PhaseCleanup},
	event.PhaseObservation:     {event.PhaseThink},
	event.PhaseThink:           {event.PhaseResolve},
	event.PhaseResolve:         {event.PhaseExecute},
	event.PhaseExecute:         {event.PhaseObservation, event.PhaseCleanup},
	event.PhaseCleanup:         {event.PhaseNone},
}

// machine tracks the active phase and reports entry and exit
type machine struct {
	o       *Orchestrator
	current event.Phase
	entered time.Time
	turnID  uint64
	slot    int
}

// enter closes the current phase and opens next
func (m *machine) enter(next event.Phase, slot int) error {
	if !slices.Contains(transitions[m.current], next) {
		return fmt.Errorf("%w: %v -> %v", ErrIllegalTransition, m.current, next)
	}
	m.exit()

	m.current = next
	m.slot = slot
	if next == event.PhaseNone {
		return nil
	}
	m.entered = m.o.clock.Now()
	m.o.metrics.Strings.Get(status.KeyPhaseCurrent).Store(next.String())
	m.o.publish(event.Notification{Kind: event.PhaseStarted, Phase: next, TurnID: m.turnID, Slot: slot})
	return nil
}

// exit reports completion of the current phase, if any
func (m *machine) exit() {
	if m.current == event.PhaseNone {
		return
	}
	d := m.o.clock.Now().Sub(m.entered)
	m.o.metrics.Observe(m.current.MetricKey(), d)
	m.o.publish(event.Notification{
		Kind:     event.PhaseCompleted,
		Phase:    m.current,
		TurnID:   m.turnID,
		Slot:     m.slot,
		Duration: d,
	})
}

// finish walks back to PhaseNone from wherever the turn stopped
func (m *machine) finish() {
	if m.current == event.PhaseNone {
		return
	}
	if m.current != event.PhaseTurnInit && m.current != event.PhaseCleanup {
		m.exit()
		m.current = event.PhaseNone
		return
	}
	_ = m.enter(event.PhaseNone, -1)
}
