package main

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/config"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/pipeline"
)

func builtinSession(t *testing.T) *session {
	t.Helper()
	sc, err := config.ParseScenario(builtinArena)
	if err != nil {
		t.Fatalf("Builtin arena invalid: %v", err)
	}
	s, err := newSession(config.Default(), sc, newAnimExecutor(nil, nil), nil)
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	return s
}

func TestNewSession_SpawnsScenario(t *testing.T) {
	s := builtinSession(t)
	if s.deps.Arena.Len() != len(s.scenario.Actors) {
		t.Errorf("Expected %d actors, got %d", len(s.scenario.Actors), s.deps.Arena.Len())
	}
	if s.input == nil || s.glyphs[s.player] != '@' {
		t.Fatalf("Expected an input-driven player drawn as @")
	}
	if c, _ := s.deps.Occupancy.GetActorCell(s.player); c != core.C(2, 9) {
		t.Errorf("Expected player at (2,9), got %v", c)
	}
}

func TestSession_PlayerMoveAndRejection(t *testing.T) {
	s := builtinSession(t)
	ctx := context.Background()

	cmd, ok := s.moveCommand(core.DirE, 1)
	if !ok || !s.submit(cmd) {
		t.Fatal("Expected move command submitted")
	}
	out, err := s.step(ctx)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if !out.Advanced || out.PlayerRejected {
		t.Errorf("Expected accepted move, got %+v", out)
	}
	if c, _ := s.deps.Occupancy.GetActorCell(s.player); c != core.C(3, 9) {
		t.Errorf("Expected player at (3,9), got %v", c)
	}

	// South of row 9 is the outer wall
	cmd, _ = s.moveCommand(core.DirS, 1)
	s.submit(cmd)
	out, err = s.step(ctx)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if !out.PlayerRejected || out.Advanced {
		t.Errorf("Expected rejected move into wall, got %+v", out)
	}
	if d, _ := s.exec.Facing(s.player); d != core.DirS {
		t.Errorf("Expected executor to see facing S, got %v", d)
	}
	if lines := s.recent(); !strings.Contains(lines[len(lines)-1], "rejected") {
		t.Errorf("Expected rejection in history, got %q", lines[len(lines)-1])
	}

	// The rejected turn did not consume its id
	out, err = s.step(ctx)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if out.TurnID != 2 || !out.Advanced || s.turn != 2 {
		t.Errorf("Expected turn 2 retried and advanced, got id %d advanced %v counter %d", out.TurnID, out.Advanced, s.turn)
	}
}

func TestSession_PhaseLogAndPaths(t *testing.T) {
	s := builtinSession(t)
	if _, err := s.step(context.Background()); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	lines := s.drainPhases()
	if len(lines) != phaseSize {
		t.Fatalf("Expected %d phase lines, got %q", phaseSize, lines)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "Cleanup") {
		t.Errorf("Expected Cleanup last, got %q", lines[len(lines)-1])
	}
	if s.queue.Len() != 0 {
		t.Errorf("Expected queue drained, %d left", s.queue.Len())
	}
	if again := s.drainPhases(); !slices.Equal(again, lines) {
		t.Errorf("Expected phase log kept between drains, got %q", again)
	}

	paths := s.paths()
	if len(paths) == 0 {
		t.Fatal("Expected chaser paths after a turn")
	}
	for id, path := range paths {
		if id == s.player {
			t.Errorf("Expected no path for the player")
		}
		from, _ := s.deps.Occupancy.GetActorCell(id)
		for _, c := range path {
			if !from.Adjacent(c) || !s.grid.IsWalkable(c) {
				t.Errorf("Path of %s breaks at %v -> %v", s.name(id), from, c)
				break
			}
			from = c
		}
	}
}

func TestSession_HeadlessDeterministic(t *testing.T) {
	run := func() string {
		var buf bytes.Buffer
		if err := builtinSession(t).runHeadless(context.Background(), 6, &buf); err != nil {
			t.Fatalf("runHeadless failed: %v", err)
		}
		return buf.String()
	}
	first := run()
	if first == "" {
		t.Fatal("Expected headless output")
	}
	if second := run(); second != first {
		t.Errorf("Expected identical runs\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestAnimExecutor_Lifecycle(t *testing.T) {
	now := time.Unix(0, 0)
	e := newAnimExecutor(nil, map[action.AbilityKind]time.Duration{action.Attack: time.Second})
	e.now = func() time.Time { return now }

	tok, err := e.Dispatch(context.Background(), action.ResolvedAction{Actor: 1, Kind: action.Attack, TargetActor: 2})
	if err != nil {
		t.Fatal(err)
	}
	if e.IsComplete(tok) || !e.Busy() || !e.Struck(2) {
		t.Errorf("Expected attack in flight")
	}

	e.ForceClear(tok)
	if !e.IsComplete(tok) || e.Busy() {
		t.Errorf("Expected force-cleared attack complete")
	}

	tok, _ = e.Dispatch(context.Background(), action.ResolvedAction{Actor: 1, Kind: action.Attack, TargetActor: 2})
	now = now.Add(2 * time.Second)
	if !e.IsComplete(tok) {
		t.Errorf("Expected attack complete after its duration")
	}

	var _ pipeline.ForceClearer = e
	var _ pipeline.Facer = e
	var _ pipeline.Quiescer = e
}
