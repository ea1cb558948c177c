package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/actor"
	"github.com/lixenwraith/vi-tactics/config"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/occupancy"
	"github.com/lixenwraith/vi-tactics/registry"
	"github.com/lixenwraith/vi-tactics/terrain"
)

// fakeClock advances only when slept on
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (c *fakeClock) count(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

type dispatched struct {
	tok    Token
	action action.ResolvedAction
	at     time.Time
	done   time.Time
}

// fakeExecutor completes actions after a per-kind latency on the fake clock
type fakeExecutor struct {
	clock   *fakeClock
	latency map[action.AbilityKind]time.Duration
	stuck   map[core.ActorID]bool
	fail    map[core.ActorID]bool

	log        []dispatched
	cleared    map[Token]bool
	clearCalls [][]Token
	faced      map[core.ActorID]core.Direction
	maxAttacks int
}

func newFakeExecutor(clock *fakeClock) *fakeExecutor {
	return &fakeExecutor{
		clock:   clock,
		latency: make(map[action.AbilityKind]time.Duration),
		stuck:   make(map[core.ActorID]bool),
		fail:    make(map[core.ActorID]bool),
		cleared: make(map[Token]bool),
		faced:   make(map[core.ActorID]core.Direction),
	}
}

func (e *fakeExecutor) Dispatch(_ context.Context, a action.ResolvedAction) (Token, error) {
	if e.fail[a.Actor] {
		return 0, errors.New("ability unavailable")
	}
	if a.Kind == action.Attack {
		running := 1
		for _, d := range e.log {
			if d.action.Kind == action.Attack && !e.IsComplete(d.tok) {
				running++
			}
		}
		e.maxAttacks = max(e.maxAttacks, running)
	}

	now := e.clock.Now()
	done := now.Add(e.latency[a.Kind])
	if e.stuck[a.Actor] {
		done = now.Add(time.Hour)
	}
	tok := Token(len(e.log) + 1)
	e.log = append(e.log, dispatched{tok: tok, action: a, at: now, done: done})
	return tok, nil
}

func (e *fakeExecutor) IsComplete(tok Token) bool {
	if e.cleared[tok] {
		return true
	}
	return !e.clock.Now().Before(e.log[tok-1].done)
}

func (e *fakeExecutor) ForceClear(toks ...Token) {
	e.clearCalls = append(e.clearCalls, toks)
	if len(toks) == 0 {
		for _, d := range e.log {
			e.cleared[d.tok] = true
		}
		return
	}
	for _, tok := range toks {
		e.cleared[tok] = true
	}
}

func (e *fakeExecutor) Face(id core.ActorID, dir core.Direction) {
	e.faced[id] = dir
}

// stubbornExecutor never completes and cannot be force-cleared
type stubbornExecutor struct {
	next Token
}

func (s *stubbornExecutor) Dispatch(context.Context, action.ResolvedAction) (Token, error) {
	s.next++
	return s.next, nil
}

func (s *stubbornExecutor) IsComplete(Token) bool {
	return false
}

type board struct {
	o     *Orchestrator
	deps  Deps
	exec  *fakeExecutor
	clock *fakeClock
}

func newBoard(t *testing.T, grid *terrain.Grid, opts ...Option) *board {
	t.Helper()
	clock := newFakeClock()
	exec := newFakeExecutor(clock)
	deps := Deps{
		Registry:  registry.New(),
		Occupancy: occupancy.New(),
		Terrain:   grid,
		Arena:     actor.NewArena(),
		Executor:  exec,
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	return &board{
		o:     New(config.Default(), deps, opts...),
		deps:  deps,
		exec:  exec,
		clock: clock,
	}
}

func (b *board) spawn(t *testing.T, rec actor.Actor, cell core.Cell) core.ActorID {
	t.Helper()
	id, err := b.o.Spawn(rec, cell)
	if err != nil {
		t.Fatalf("Spawn %q failed: %v", rec.Name, err)
	}
	return id
}

func (b *board) cellOf(t *testing.T, id core.ActorID) core.Cell {
	t.Helper()
	c, ok := b.deps.Occupancy.GetActorCell(id)
	if !ok {
		t.Fatalf("Actor %v not placed", id)
	}
	return c
}
