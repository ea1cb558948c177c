package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/actor"
	"github.com/lixenwraith/vi-tactics/config"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/event"
	"github.com/lixenwraith/vi-tactics/navigation"
	"github.com/lixenwraith/vi-tactics/occupancy"
	"github.com/lixenwraith/vi-tactics/pipeline"
	"github.com/lixenwraith/vi-tactics/registry"
	"github.com/lixenwraith/vi-tactics/terrain"
	"github.com/lixenwraith/vi-tactics/think"
)

const (
	historySize = 8
	phaseSize   = 4
	pathLimit   = 32
)

// session is one loaded scenario wired to an orchestrator
type session struct {
	cfg      config.Config
	scenario *config.Scenario
	grid     *terrain.Grid
	deps     pipeline.Deps
	exec     *animExecutor
	orch     *pipeline.Orchestrator
	queue    *event.Queue
	logger   *log.Logger

	player core.ActorID
	input  *think.InputThinker
	glyphs map[core.ActorID]rune

	mu      sync.Mutex
	turn    uint64
	last    pipeline.TurnOutcome
	history []string
	phases  []string
}

func newSession(cfg config.Config, sc *config.Scenario, exec *animExecutor, logger *log.Logger) (*session, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	grid, err := sc.Grid()
	if err != nil {
		return nil, err
	}

	var regOpts []registry.Option
	if ns := sc.Namespace(); ns != uuid.Nil {
		regOpts = append(regOpts, registry.WithGUIDSource(registry.NamespacedGUIDs(ns)))
	}
	deps := pipeline.Deps{
		Registry: registry.New(regOpts...),
		Field: navigation.New(grid,
			navigation.WithConnectivity(cfg.Navigation.Connectivity),
			navigation.WithExpansionCap(cfg.Navigation.ExpansionCap),
		),
		Occupancy: occupancy.New(),
		Terrain:   grid,
		Arena:     actor.NewArena(),
		Executor:  exec,
	}

	queue := event.NewQueue()
	s := &session{
		cfg:      cfg,
		scenario: sc,
		grid:     grid,
		deps:     deps,
		exec:     exec,
		orch:     pipeline.New(cfg, deps, pipeline.WithLogger(logger), pipeline.WithBus(event.NewBus(queue))),
		queue:    queue,
		logger:   logger,
		glyphs:   make(map[core.ActorID]rune),
	}

	for _, spec := range sc.Actors {
		th, err := spec.NewThinker(cfg.Combat)
		if err != nil {
			return nil, err
		}
		id, err := s.orch.Spawn(actor.Actor{
			Name:    spec.Name,
			Speed:   spec.Speed,
			Player:  spec.Player,
			Thinker: th,
		}, spec.Cell())
		if err != nil {
			return nil, err
		}

		s.glyphs[id] = glyphFor(spec)
		if spec.Player {
			s.player = id
			s.input, _ = th.(*think.InputThinker)
		}
	}
	return s, nil
}

func glyphFor(spec config.ActorSpec) rune {
	if spec.Player {
		return '@'
	}
	for _, r := range spec.Name {
		return r
	}
	return '?'
}

// submit queues a player command for the next turn, false without an input-driven player
func (s *session) submit(cmd think.Command) bool {
	if s.input == nil {
		return false
	}
	s.input.Submit(cmd)
	return true
}

// moveCommand builds a Move (or Dash over dist cells) from the player's cell toward dir
func (s *session) moveCommand(dir core.Direction, dist int) (think.Command, bool) {
	from, ok := s.deps.Occupancy.GetActorCell(s.player)
	if !ok {
		return think.Command{}, false
	}
	dx, dy := dir.Vector()
	kind := action.Move
	if dist > 1 {
		kind = action.Dash
	}
	return think.Command{Kind: kind, Target: from.Add(dx*dist, dy*dist)}, true
}

// step runs the next turn and records the outcome
// The turn id is consumed only by an advanced turn, a rejected or stalled one is retried under the same id
func (s *session) step(ctx context.Context) (pipeline.TurnOutcome, error) {
	s.mu.Lock()
	turn := s.turn + 1
	s.mu.Unlock()

	out, err := s.orch.RunTurn(ctx, turn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && out.Advanced {
		s.turn = turn
	}
	s.last = out
	if err != nil {
		s.pushLocked(fmt.Sprintf("turn %d: %v", turn, err))
		return out, err
	}
	s.pushLocked(s.summarize(out))
	return out, nil
}

func (s *session) summarize(out pipeline.TurnOutcome) string {
	var moved, attacked, demoted int
	for _, a := range out.Actions {
		switch {
		case a.IsWait && a.Reason != action.ReasonWaitRequested:
			demoted++
		case a.Kind == action.Attack && !a.IsWait:
			attacked++
		case a.Moving():
			moved++
		}
	}
	line := fmt.Sprintf("turn %d: %d moved, %d attacked, %d demoted", out.TurnID, moved, attacked, demoted)
	switch {
	case out.PlayerRejected && !out.Advanced:
		line += ", move rejected"
	case out.PlayerRejected:
		line += ", player blocked"
	case !out.Advanced:
		line += ", stalled"
	}
	if len(out.Timeouts) > 0 {
		line += fmt.Sprintf(", %d timed out", len(out.Timeouts))
	}
	return line
}

func (s *session) pushLocked(line string) {
	s.history = append(s.history, line)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

// recent returns the latest summary lines, oldest first
func (s *session) recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// drainPhases moves completed phase notifications from the queue into the phase log
// Single consumer, called from the host loop
func (s *session) drainPhases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.queue.Consume() {
		switch n.Kind {
		case event.PhaseCompleted:
			line := fmt.Sprintf("%v %v", n.Phase, n.Duration.Round(time.Microsecond))
			if n.Slot >= 0 {
				line = fmt.Sprintf("%v[%d] %v", n.Phase, n.Slot, n.Duration.Round(time.Microsecond))
			}
			s.phases = append(s.phases, line)
		case event.InitRetry:
			s.phases = append(s.phases, n.String())
		}
	}
	if len(s.phases) > phaseSize {
		s.phases = s.phases[len(s.phases)-phaseSize:]
	}
	return append([]string(nil), s.phases...)
}

// paths returns each chaser's descent toward the field source
// Reads the shared field, only valid while no turn is running
func (s *session) paths() map[core.ActorID][]core.Cell {
	out := make(map[core.ActorID][]core.Cell)
	if !s.deps.Field.Valid() {
		return out
	}
	for _, rec := range s.deps.Arena.Live() {
		if rec.Player {
			continue
		}
		if c, ok := s.deps.Occupancy.GetActorCell(rec.ID); ok {
			if p := s.deps.Field.PathToSource(c, pathLimit); len(p) > 0 {
				out[rec.ID] = p
			}
		}
	}
	return out
}

func (s *session) lastOutcome() pipeline.TurnOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// runHeadless steps n turns, writing every resolved action to w
func (s *session) runHeadless(ctx context.Context, n int, w io.Writer) error {
	for range n {
		out, err := s.step(ctx)
		if err != nil {
			return err
		}
		for _, a := range out.Actions {
			fmt.Fprintf(w, "turn %d slot %d: %s %v\n", out.TurnID, a.TimeSlot, s.name(a.Actor), a)
		}
		if !out.Advanced {
			fmt.Fprintf(w, "turn %d: not advanced\n", out.TurnID)
			// Give a busy executor a chance to drain before the next turn
			time.Sleep(s.cfg.Turn.QuiescenceRetryDelay)
		}
	}
	return nil
}

func (s *session) name(id core.ActorID) string {
	if rec, ok := s.deps.Arena.Get(id); ok {
		return rec.Name
	}
	return id.String()
}
