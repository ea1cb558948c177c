package resolver

import (
	"math"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/registry"
)

// StableLookup resolves an actor handle to its stable identity
type StableLookup interface {
	Lookup(core.ActorID) (registry.StableID, bool)
}

// DistanceQuery is the read side of a distance field
type DistanceQuery interface {
	Distance(core.Cell) int
}

// BuildEntries enriches intents with tier, stable identity and distance reduction
// Unregistered actors sort after every registered one. A nil field yields zero reductions
func BuildEntries(intents []action.Intent, ids StableLookup, field DistanceQuery) []action.ReservationEntry {
	entries := make([]action.ReservationEntry, 0, len(intents))
	for _, in := range intents {
		e := action.ReservationEntry{
			Intent:          in,
			Tier:            in.Kind.Tier(),
			GenerationOrder: math.MaxUint32,
		}
		if ids != nil {
			if sid, ok := ids.Lookup(in.Actor); ok {
				e.StableID = sid
				e.GenerationOrder = sid.GenerationOrder
			}
		}
		if field != nil && in.Kind.Moves() {
			e.DistanceReduction = distanceReduction(field, in.CurrentCell, in.RequestedCell)
		}
		entries = append(entries, e)
	}
	return entries
}

// distanceReduction is how much closer the move gets to the field source, 0 when either end is unknown
func distanceReduction(field DistanceQuery, from, to core.Cell) int {
	dFrom := field.Distance(from)
	dTo := field.Distance(to)
	if dFrom < 0 || dTo < 0 {
		return 0
	}
	return dFrom - dTo
}
