package event

import (
	"fmt"
	"strings"
)

// Phase tags the stages of the turn pipeline
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseTurnInit
	PhasePlayerWaitInput
	PhaseObservation
	PhaseThink
	PhaseResolve
	PhaseExecute
	PhaseCleanup
	phaseCount
)

var (
	phaseToName = [phaseCount]string{
		"None", "TurnInit", "PlayerWaitInput", "Observation", "Think", "Resolve", "Execute", "Cleanup",
	}
	nameToPhase = func() map[string]Phase {
		m := make(map[string]Phase, phaseCount)
		for i, name := range phaseToName {
			m[strings.ToLower(name)] = Phase(i)
		}
		return m
	}()
)

func (p Phase) String() string {
	if p >= phaseCount {
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
	return phaseToName[p]
}

// MetricKey is the status registry key for the phase duration
func (p Phase) MetricKey() string {
	return "phase." + strings.ToLower(p.String()) + ".ms"
}

// GetPhase returns the phase for a case-insensitive name
func GetPhase(name string) (Phase, bool) {
	p, ok := nameToPhase[strings.ToLower(name)]
	return p, ok
}

// Phases returns all real phases in pipeline order
func Phases() []Phase {
	out := make([]Phase, 0, phaseCount-1)
	for p := PhaseTurnInit; p < phaseCount; p++ {
		out = append(out, p)
	}
	return out
}
