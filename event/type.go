package event

import (
	"fmt"
	"time"
)

// Kind distinguishes phase entry from phase exit
type Kind uint8

const (
	PhaseStarted Kind = iota
	PhaseCompleted
	InitRetry
)

func (k Kind) String() string {
	switch k {
	case PhaseStarted:
		return "started"
	case PhaseCompleted:
		return "completed"
	case InitRetry:
		return "init-retry"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Notification is one outbound phase transition
type Notification struct {
	Kind     Kind
	Phase    Phase
	TurnID   uint64
	Slot     int           // -1 outside the slot loop
	Duration time.Duration // Set on PhaseCompleted
	Attempt  int           // Set on InitRetry
	Err      error         // Set on InitRetry
}

func (n Notification) String() string {
	switch n.Kind {
	case PhaseCompleted:
		return fmt.Sprintf("turn %d slot %d %v %v in %v", n.TurnID, n.Slot, n.Phase, n.Kind, n.Duration)
	case InitRetry:
		return fmt.Sprintf("turn %d init attempt %d failed: %v", n.TurnID, n.Attempt, n.Err)
	default:
		return fmt.Sprintf("turn %d slot %d %v %v", n.TurnID, n.Slot, n.Phase, n.Kind)
	}
}
