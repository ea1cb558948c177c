package main

import (
	"context"
	"sync"
	"time"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/audio"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/pipeline"
)

// animExecutor stands in for the ability system: each action "plays" for a fixed
// duration of wall time and reports complete once it elapsed
type animExecutor struct {
	mu        sync.Mutex
	durations map[action.AbilityKind]time.Duration
	now       func() time.Time
	sound     *audio.SoundManager

	next    pipeline.Token
	running map[pipeline.Token]time.Time
	facing  map[core.ActorID]core.Direction
	strikes map[core.ActorID]time.Time // Attack flash until
}

func newAnimExecutor(sound *audio.SoundManager, durations map[action.AbilityKind]time.Duration) *animExecutor {
	if durations == nil {
		durations = map[action.AbilityKind]time.Duration{}
	}
	return &animExecutor{
		durations: durations,
		now:       time.Now,
		sound:     sound,
		running:   make(map[pipeline.Token]time.Time),
		facing:    make(map[core.ActorID]core.Direction),
		strikes:   make(map[core.ActorID]time.Time),
	}
}

func (e *animExecutor) Dispatch(_ context.Context, a action.ResolvedAction) (pipeline.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	done := e.now().Add(e.durations[a.Kind])
	e.running[e.next] = done

	if a.Kind == action.Attack {
		e.strikes[a.TargetActor] = done.Add(150 * time.Millisecond)
		e.play(audio.CueAttack)
	} else {
		e.facing[a.Actor] = core.DirectionTo(a.CurrentCell, a.NextCell)
		e.play(audio.CueStep)
	}
	return e.next, nil
}

func (e *animExecutor) IsComplete(tok pipeline.Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	done, ok := e.running[tok]
	if !ok {
		return true
	}
	if e.now().Before(done) {
		return false
	}
	delete(e.running, tok)
	return true
}

// ForceClear drops the given tokens, or everything when none are given
func (e *animExecutor) ForceClear(toks ...pipeline.Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(toks) == 0 {
		clear(e.running)
		return
	}
	for _, tok := range toks {
		delete(e.running, tok)
	}
	e.play(audio.CueTimeout)
}

func (e *animExecutor) Face(id core.ActorID, dir core.Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.facing[id] = dir
	e.play(audio.CueReject)
}

func (e *animExecutor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for _, done := range e.running {
		if now.Before(done) {
			return true
		}
	}
	return false
}

// Facing returns the last direction the actor turned to
func (e *animExecutor) Facing(id core.ActorID) (core.Direction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.facing[id]
	return d, ok
}

// Struck reports whether the actor is still flashing from a hit
func (e *animExecutor) Struck(id core.ActorID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	until, ok := e.strikes[id]
	return ok && e.now().Before(until)
}

func (e *animExecutor) play(c audio.Cue) {
	if e.sound != nil {
		e.sound.Play(c)
	}
}
