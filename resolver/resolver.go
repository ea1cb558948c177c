package resolver

import (
	"cmp"
	"io"
	"log"
	"slices"

	"github.com/lixenwraith/vi-tactics/action"
)

// Resolver turns possibly-conflicting reservation entries into one resolved action each
// Resolution is a pure function of the entry set, input order never matters
type Resolver struct {
	logger *log.Logger

	// Scratch, reused across calls and cleared by Reset
	buckets map[action.BucketKey][]int
	keys    []action.BucketKey
	sorted  []action.ReservationEntry
}

// New creates a resolver, a nil logger discards warnings
func New(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		logger:  logger,
		buckets: make(map[action.BucketKey][]int),
	}
}

// Reset drops the scratch bucket table
func (r *Resolver) Reset() {
	clear(r.buckets)
	r.keys = r.keys[:0]
	r.sorted = r.sorted[:0]
}

// Resolve runs tiered resolution independently per claimed cell
//  1. only the highest tier present in a bucket contends
//  2. contenders rank by base priority desc, distance reduction desc, generation order asc
//  3. the top contender wins, every other entry of the bucket waits
//
// Attacks never vacate their cell. Output is sorted by generation order
func (r *Resolver) Resolve(entries []action.ReservationEntry) []action.ResolvedAction {
	r.Reset()

	// Canonical order first so bucket contents never depend on caller order
	r.sorted = append(r.sorted, entries...)
	slices.SortFunc(r.sorted, compareIdentity)

	for i, e := range r.sorted {
		k := e.Key()
		if _, ok := r.buckets[k]; !ok {
			r.keys = append(r.keys, k)
		}
		r.buckets[k] = append(r.buckets[k], i)
	}
	slices.SortFunc(r.keys, compareKeys)

	out := make([]action.ResolvedAction, len(r.sorted))
	for _, k := range r.keys {
		r.resolveBucket(r.buckets[k], out)
	}
	return out
}

func (r *Resolver) resolveBucket(members []int, out []action.ResolvedAction) {
	topTier := -1
	for _, i := range members {
		topTier = max(topTier, r.sorted[i].Tier)
	}

	contenders := make([]int, 0, len(members))
	for _, i := range members {
		if r.sorted[i].Tier == topTier {
			contenders = append(contenders, i)
		} else {
			out[i] = demoted(r.sorted[i], action.ReasonLowerTier)
		}
	}

	slices.SortFunc(contenders, func(a, b int) int {
		return compareRank(r.sorted[a], r.sorted[b])
	})

	for rank, i := range contenders {
		if rank == 0 {
			out[i] = winner(r.sorted[i])
		} else {
			out[i] = demoted(r.sorted[i], action.ReasonOutranked)
		}
	}
}

func winner(e action.ReservationEntry) action.ResolvedAction {
	a := base(e)
	switch e.Kind {
	case action.Wait:
		a.Demote(action.ReasonWaitRequested)
	case action.Attack:
		a.NextCell = e.CurrentCell
		a.Reason = action.ReasonAttackHold
	default:
		a.NextCell = e.RequestedCell
		a.Reason = action.ReasonWon
	}
	return a
}

func demoted(e action.ReservationEntry, reason action.Reason) action.ResolvedAction {
	a := base(e)
	if e.Kind == action.Wait {
		reason = action.ReasonWaitRequested
	}
	a.Demote(reason)
	return a
}

func base(e action.ReservationEntry) action.ResolvedAction {
	return action.ResolvedAction{
		Actor:       e.Actor,
		CurrentCell: e.CurrentCell,
		NextCell:    e.CurrentCell,
		TargetCell:  e.RequestedCell,
		TargetActor: e.TargetActor,
		Kind:        e.Kind,
		TimeSlot:    e.TimeSlot,
	}
}

// compareRank orders contenders of one tier, best first
func compareRank(a, b action.ReservationEntry) int {
	if c := cmp.Compare(b.BasePriority, a.BasePriority); c != 0 {
		return c
	}
	if c := cmp.Compare(b.DistanceReduction, a.DistanceReduction); c != 0 {
		return c
	}
	return compareIdentity(a, b)
}

// compareIdentity is the total order over entries: generation order, GUID, handle, slot
func compareIdentity(a, b action.ReservationEntry) int {
	if c := cmp.Compare(a.GenerationOrder, b.GenerationOrder); c != 0 {
		return c
	}
	if a.StableID.Less(b.StableID) {
		return -1
	}
	if b.StableID.Less(a.StableID) {
		return 1
	}
	if c := cmp.Compare(a.Actor, b.Actor); c != 0 {
		return c
	}
	return cmp.Compare(a.TimeSlot, b.TimeSlot)
}

func compareKeys(a, b action.BucketKey) int {
	if c := cmp.Compare(a.TimeSlot, b.TimeSlot); c != 0 {
		return c
	}
	if a.Cell == b.Cell {
		return 0
	}
	if a.Cell.Less(b.Cell) {
		return -1
	}
	return 1
}
