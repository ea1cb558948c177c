package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/status"
)

// execute dispatches the non-wait actions of one slot and applies the moves
// With any attack intent in the slot, attacks run one at a time and moves follow them;
// otherwise all moves are dispatched together. Actions that never took effect are demoted in place
func (o *Orchestrator) execute(ctx context.Context, d Deps, turnID uint64, intents []action.Intent, actions []action.ResolvedAction) ([]core.ActorID, error) {
	var attacks, moves []action.ResolvedAction
	for _, a := range actions {
		switch {
		case a.IsWait:
		case a.Kind == action.Attack:
			attacks = append(attacks, a)
		default:
			moves = append(moves, a)
		}
	}
	sequential := slices.ContainsFunc(intents, func(in action.Intent) bool { return in.Kind == action.Attack })

	var timeouts []core.ActorID
	failed := make(map[core.ActorID]action.Reason)
	if sequential {
		for _, a := range attacks {
			started, stuck, err := o.dispatchAndAwait(ctx, d, turnID, []action.ResolvedAction{a})
			timeouts = append(timeouts, stuck...)
			if len(started) == 0 {
				failed[a.Actor] = action.ReasonDispatchFailed
			}
			if err != nil {
				demoteFailed(actions, failed)
				return timeouts, err
			}
		}
	}

	if len(moves) > 0 {
		started, stuck, err := o.dispatchAndAwait(ctx, d, turnID, moves)
		timeouts = append(timeouts, stuck...)
		for _, a := range moves {
			if !slices.ContainsFunc(started, func(s action.ResolvedAction) bool { return s.Actor == a.Actor }) {
				failed[a.Actor] = action.ReasonDispatchFailed
			}
		}
		for _, id := range o.applyMoves(d, turnID, started) {
			failed[id] = action.ReasonBlocked
		}
		if err != nil {
			demoteFailed(actions, failed)
			return timeouts, err
		}
	}
	demoteFailed(actions, failed)
	return timeouts, nil
}

// demoteFailed turns the actions of actors in failed into waits so the outcome matches occupancy
func demoteFailed(actions []action.ResolvedAction, failed map[core.ActorID]action.Reason) {
	if len(failed) == 0 {
		return
	}
	for i := range actions {
		if reason, ok := failed[actions[i].Actor]; ok && !actions[i].IsWait {
			actions[i].Demote(reason)
		}
	}
}

// dispatchAndAwait hands batch to the executor and waits at the barrier
// Actions still running at the timeout are force-cleared and reported as stuck
func (o *Orchestrator) dispatchAndAwait(ctx context.Context, d Deps, turnID uint64, batch []action.ResolvedAction) ([]action.ResolvedAction, []core.ActorID, error) {
	started := make([]action.ResolvedAction, 0, len(batch))
	flights := make([]inflight, 0, len(batch))
	for _, a := range batch {
		tok, err := d.Executor.Dispatch(ctx, a)
		if err != nil {
			o.logger.Printf("[WARN] turn %d: dispatch %v failed: %v", turnID, a, err)
			continue
		}
		o.metrics.Inc(status.KeyExecuteDispatched, 1)
		started = append(started, a)
		flights = append(flights, inflight{tok: tok, action: a})
	}
	o.pending = append(o.pending, flights...)

	waiting, err := o.await(ctx, d.Executor, flights)
	if err != nil {
		return started, nil, err
	}
	if len(waiting) == 0 {
		return started, nil, nil
	}

	stuck := make([]core.ActorID, 0, len(waiting))
	toks := make([]Token, 0, len(waiting))
	for _, f := range waiting {
		o.logger.Printf("[WARN] %v", fmt.Errorf("turn %d slot %d actor %v %v after %v: %w",
			turnID, f.action.TimeSlot, f.action.Actor, f.action.Kind, o.cfg.Turn.BarrierTimeout, ErrBarrierTimeout))
		stuck = append(stuck, f.action.Actor)
		toks = append(toks, f.tok)
	}
	o.metrics.Inc(status.KeyExecuteTimeouts, int64(len(waiting)))
	if fc, ok := d.Executor.(ForceClearer); ok {
		fc.ForceClear(toks...)
	}
	return started, stuck, nil
}

// await polls until every flight completed, the barrier timeout elapsed or ctx is done
// Returns the flights still incomplete
func (o *Orchestrator) await(ctx context.Context, exec Executor, flights []inflight) ([]inflight, error) {
	poll := o.cfg.Turn.BarrierPoll
	maxPolls := int(o.cfg.Turn.BarrierTimeout/max(poll, 1)) + 1
	deadline := o.clock.Now().Add(o.cfg.Turn.BarrierTimeout)

	waiting := slices.Clone(flights)
	for polls := 0; ; polls++ {
		waiting = slices.DeleteFunc(waiting, func(f inflight) bool { return exec.IsComplete(f.tok) })
		if len(waiting) == 0 {
			return nil, nil
		}
		if polls >= maxPolls || !o.clock.Now().Before(deadline) {
			return waiting, nil
		}
		if err := o.clock.Sleep(ctx, poll); err != nil {
			return waiting, err
		}
	}
}

// applyMoves commits executed moves to occupancy in one batch inside a move phase
// Returns the actors whose move the batch dropped
func (o *Orchestrator) applyMoves(d Deps, turnID uint64, moves []action.ResolvedAction) []core.ActorID {
	d.Occupancy.BeginMovePhase()
	defer d.Occupancy.EndMovePhase()

	b := d.Occupancy.BeginMoves()
	for _, a := range moves {
		if a.Moving() {
			b.Move(a.Actor, a.NextCell)
		}
	}
	if err := b.Commit(); err != nil {
		o.logger.Printf("[WARN] turn %d: %v", turnID, err)
	}
	var dropped []core.ActorID
	for _, c := range b.Collisions() {
		o.logger.Printf("[WARN] turn %d: move of %v into %v dropped: %v", turnID, c.Actor, c.Cell, c.Err)
		dropped = append(dropped, c.Actor)
	}
	return dropped
}
