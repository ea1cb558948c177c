package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/actor"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/event"
	"github.com/lixenwraith/vi-tactics/navigation"
	"github.com/lixenwraith/vi-tactics/resolver"
	"github.com/lixenwraith/vi-tactics/status"
	"github.com/lixenwraith/vi-tactics/think"
)

// participant is a live, placed actor taking part in one slot
type participant struct {
	rec  actor.Actor
	cell core.Cell
}

type playerState struct {
	id     core.ActorID // NoActor without a placed player
	cell   core.Cell
	src    CommandSource
	cmd    think.Command
	hasCmd bool
}

// RunTurn advances the board by one turn
// Only missing dependencies and context cancellation are errors; conflicts, races and
// stuck executions degrade into waits, force-clears and Advanced=false
func (o *Orchestrator) RunTurn(ctx context.Context, turnID uint64) (TurnOutcome, error) {
	out := TurnOutcome{TurnID: turnID}
	m := &machine{o: o, turnID: turnID, slot: -1}
	defer m.finish()
	defer o.dropPending()

	if err := m.enter(event.PhaseTurnInit, -1); err != nil {
		return out, err
	}
	d, err := o.initTurn(ctx, turnID)
	if err != nil {
		return out, err
	}

	if err := m.enter(event.PhasePlayerWaitInput, -1); err != nil {
		return out, err
	}
	player := o.locatePlayer(d)
	predicted := player.cell
	if player.hasCmd && player.cmd.Kind.Moves() {
		if err := think.ValidateMove(player.cmd.Kind, player.cell, player.cmd.Target, d.Terrain, d.Occupancy, nil); err != nil {
			// Rejected before resolution: face the attempted direction, no turn consumed
			o.logger.Printf("[INFO] turn %d: player command rejected: %v", turnID, err)
			o.face(d, player.id, player.cell, player.cmd.Target)
			player.src.Discard()
			out.PlayerRejected = true
			if err := m.enter(event.PhaseCleanup, -1); err != nil {
				return out, err
			}
			o.cleanup(d)
			return out, nil
		}
		predicted = player.src.PredictDestination(player.cell)
	}

	var runErr error
	for slot := range max(o.cfg.Turn.MaxTimeSlots, 1) {
		ps := o.participants(d, slot)
		if len(ps) == 0 {
			break
		}

		if err := m.enter(event.PhaseObservation, slot); err != nil {
			return out, err
		}
		source := predicted
		if slot > 0 {
			if c, ok := d.Occupancy.GetActorCell(player.id); ok {
				source = c
			}
		}
		o.observe(d, turnID, source, player.id != core.NoActor, ps)

		if err := m.enter(event.PhaseThink, slot); err != nil {
			return out, err
		}
		intents := o.think(d, turnID, slot, ps, player.id)

		if err := m.enter(event.PhaseResolve, slot); err != nil {
			return out, err
		}
		actions := o.resolve(d, turnID, intents)
		if slot == 0 && player.hasCmd && player.cmd.Kind.Moves() {
			if o.rejectPlayer(d, turnID, player, actions) {
				out.PlayerRejected = true
			}
		}

		if err := m.enter(event.PhaseExecute, slot); err != nil {
			return out, err
		}
		timeouts, err := o.execute(ctx, d, turnID, intents, actions)
		d.Occupancy.ReleaseTurn(turnID)

		out.Actions = append(out.Actions, actions...)
		out.Timeouts = append(out.Timeouts, timeouts...)
		out.Slots++
		if err != nil {
			runErr = err
			break
		}
	}

	if err := m.enter(event.PhaseCleanup, -1); err != nil {
		return out, err
	}
	o.cleanup(d)
	if runErr != nil {
		return out, fmt.Errorf("turn %d: %w", turnID, runErr)
	}

	out.Advanced = o.awaitQuiescence(ctx, d, turnID)
	if out.Advanced {
		o.metrics.Inc(status.KeyTurnCount, 1)
	} else {
		o.metrics.Inc(status.KeyTurnStalled, 1)
	}
	return out, nil
}

// initTurn checks dependencies, retrying a bounded number of times
// Observers are told about each failed attempt before the retry, so a host can Attach from its callback
func (o *Orchestrator) initTurn(ctx context.Context, turnID uint64) (Deps, error) {
	attempts := max(o.cfg.Turn.InitMaxAttempts, 1)
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		d := o.snapshot()
		if last = d.check(); last == nil {
			if d.Field == nil {
				d.Field = navigation.New(d.Terrain,
					navigation.WithConnectivity(o.cfg.Navigation.Connectivity),
					navigation.WithExpansionCap(o.cfg.Navigation.ExpansionCap),
				)
				o.Attach(Deps{Field: d.Field})
			}
			return d, nil
		}
		if attempt == attempts {
			break
		}

		o.metrics.Inc(status.KeyInitRetries, 1)
		o.logger.Printf("[WARN] turn %d: init attempt %d/%d failed: %v", turnID, attempt, attempts, last)
		o.publish(event.Notification{
			Kind:    event.InitRetry,
			Phase:   event.PhaseTurnInit,
			TurnID:  turnID,
			Slot:    -1,
			Attempt: attempt,
			Err:     last,
		})
		if err := o.clock.Sleep(ctx, o.cfg.Turn.InitRetryDelay); err != nil {
			return Deps{}, fmt.Errorf("%w: %w", ErrInitFailed, err)
		}
	}
	o.logger.Printf("[ERROR] turn %d: init failed after %d attempts: %v", turnID, attempts, last)
	return Deps{}, fmt.Errorf("%w after %d attempts: %w", ErrInitFailed, attempts, last)
}

func (o *Orchestrator) locatePlayer(d Deps) playerState {
	rec, ok := d.Arena.Player()
	if !ok {
		return playerState{}
	}
	cell, placed := d.Occupancy.GetActorCell(rec.ID)
	if !placed {
		return playerState{}
	}
	ps := playerState{id: rec.ID, cell: cell}
	if src, ok := rec.Thinker.(CommandSource); ok {
		ps.src = src
		ps.cmd, ps.hasCmd = src.Peek()
	}
	return ps
}

// participants returns the placed actors acting in slot, in generation order
func (o *Orchestrator) participants(d Deps, slot int) []participant {
	var ps []participant
	for _, rec := range d.Arena.Live() {
		if !rec.ActsIn(slot) {
			continue
		}
		cell, ok := d.Occupancy.GetActorCell(rec.ID)
		if !ok {
			continue
		}
		ps = append(ps, participant{rec: rec, cell: cell})
	}
	slices.SortStableFunc(ps, func(a, b participant) int { return d.Registry.Compare(a.rec.ID, b.rec.ID) })
	return ps
}

// observe refreshes the distance field around source and purges stale reservations
func (o *Orchestrator) observe(d Deps, turnID uint64, source core.Cell, hasPlayer bool, ps []participant) {
	if n := d.Occupancy.PurgeOutdated(turnID); n > 0 {
		o.logger.Printf("[INFO] turn %d: purged %d stale reservations", turnID, n)
	}
	if !hasPlayer {
		d.Field.Invalidate()
		return
	}

	targets := make([]core.Cell, 0, len(ps))
	for _, p := range ps {
		if !p.rec.Player {
			targets = append(targets, p.cell)
		}
	}
	if o.fields == nil || o.fields.Field != d.Field {
		o.fields = navigation.NewFieldCache(d.Field)
	}
	if !o.fields.Refresh(source, targets, navigation.ComputeMargin(source, targets, o.cfg.Navigation.MarginBuffer)) {
		o.metrics.Inc(status.KeyNavigationReuses, 1)
		return
	}

	st := d.Field.Stats()
	o.metrics.Inc(status.KeyNavigationExpansions, int64(st.Expanded))
	if st.CapHit {
		o.metrics.Inc(status.KeyNavigationCapHits, 1)
		o.logger.Printf("[WARN] turn %d: distance field hit expansion cap, %d/%d targets reached", turnID, st.TargetsReached, st.Targets)
	}
}

// think collects one intent per participant, normalized to the actor's live cell and slot
func (o *Orchestrator) think(d Deps, turnID uint64, slot int, ps []participant, player core.ActorID) []action.Intent {
	o.ledger.Reset()
	playerCell, _ := d.Occupancy.GetActorCell(player)

	for _, p := range ps {
		obs := think.Observation{
			Actor:      p.rec.ID,
			Cell:       p.cell,
			PlayerCell: playerCell,
			Player:     player,
			TurnID:     turnID,
			Slot:       slot,
			Field:      d.Field,
			Occupancy:  d.Occupancy,
			Terrain:    d.Terrain,
			Pending:    o.ledger,
		}
		in := p.rec.Thinker.DecideIntent(obs)
		in.Actor = p.rec.ID
		in.CurrentCell = p.cell
		in.TimeSlot = slot
		if in.Kind == action.Wait {
			in.RequestedCell = p.cell
		}
		o.ledger.Record(in)
	}
	return slices.Clone(o.ledger.Intents())
}

// resolve runs tiered resolution then reconciles the winners with the reservation table
func (o *Orchestrator) resolve(d Deps, turnID uint64, intents []action.Intent) []action.ResolvedAction {
	entries := resolver.BuildEntries(intents, d.Registry, d.Field)
	actions := o.resolver.Reconcile(o.resolver.Resolve(entries), d.Occupancy, turnID)

	for _, a := range actions {
		if a.IsWait && a.Reason != action.ReasonWaitRequested {
			o.metrics.Inc(status.KeyResolveDemotions, 1)
		}
		if a.Reason == action.ReasonReservationRace {
			o.metrics.Inc(status.KeyResolveRaces, 1)
		}
	}
	return actions
}

// rejectPlayer turns a demoted player move into a facing-only update
func (o *Orchestrator) rejectPlayer(d Deps, turnID uint64, player playerState, actions []action.ResolvedAction) bool {
	for i := range actions {
		a := &actions[i]
		if a.Actor != player.id || !a.IsWait {
			continue
		}
		o.logger.Printf("[INFO] turn %d: player move to %v rejected (%v)", turnID, player.cmd.Target, a.Reason)
		a.Reason = action.ReasonPlayerRejected
		o.face(d, player.id, player.cell, player.cmd.Target)
		return true
	}
	return false
}

func (o *Orchestrator) face(d Deps, id core.ActorID, from, to core.Cell) {
	dir := core.DirectionTo(from, to)
	if dir == core.DirNone {
		return
	}
	if err := d.Arena.Face(id, dir); err != nil {
		o.logger.Printf("[WARN] face %v: %v", id, err)
	}
	if f, ok := d.Executor.(Facer); ok {
		f.Face(id, dir)
	}
}

// cleanup drops resolver scratch and any residual executor state
// Flights the executor still reports running are kept for the quiescence check only
func (o *Orchestrator) cleanup(d Deps) {
	o.resolver.Reset()
	o.ledger.Reset()
	if fc, ok := d.Executor.(ForceClearer); ok {
		fc.ForceClear()
	}
	o.prune(d.Executor)
}

// awaitQuiescence checks the executor is idle, with exactly one delayed retry
func (o *Orchestrator) awaitQuiescence(ctx context.Context, d Deps, turnID uint64) bool {
	if o.quiescent(d.Executor) {
		return true
	}
	o.logger.Printf("[WARN] turn %d: executor busy, rechecking in %v", turnID, o.cfg.Turn.QuiescenceRetryDelay)
	if err := o.clock.Sleep(ctx, o.cfg.Turn.QuiescenceRetryDelay); err != nil {
		return false
	}
	if o.quiescent(d.Executor) {
		return true
	}
	o.logger.Printf("[WARN] turn %d: executor still busy, turn not advanced", turnID)
	return false
}

func (o *Orchestrator) quiescent(exec Executor) bool {
	o.prune(exec)
	if q, ok := exec.(Quiescer); ok && q.Busy() {
		return false
	}
	return len(o.pending) == 0
}

func (o *Orchestrator) prune(exec Executor) {
	o.pending = slices.DeleteFunc(o.pending, func(f inflight) bool { return exec.IsComplete(f.tok) })
}

// dropPending forgets the turn's flights, a later turn never waits on them
func (o *Orchestrator) dropPending() {
	clear(o.pending)
	o.pending = o.pending[:0]
}
