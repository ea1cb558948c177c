// Package pipeline drives one game turn through its phases
package pipeline

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/actor"
	"github.com/lixenwraith/vi-tactics/config"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/event"
	"github.com/lixenwraith/vi-tactics/navigation"
	"github.com/lixenwraith/vi-tactics/occupancy"
	"github.com/lixenwraith/vi-tactics/registry"
	"github.com/lixenwraith/vi-tactics/resolver"
	"github.com/lixenwraith/vi-tactics/status"
	"github.com/lixenwraith/vi-tactics/think"
)

// Deps are the subsystems a turn needs, constructed by the host and injected
// Field is built from Terrain when left nil
type Deps struct {
	Registry  *registry.Registry
	Field     *navigation.DistanceField
	Occupancy *occupancy.Grid
	Terrain   navigation.Oracle
	Arena     *actor.Arena
	Executor  Executor
}

// check returns ErrMissingDependency naming the first absent subsystem
func (d Deps) check() error {
	switch {
	case d.Registry == nil:
		return fmt.Errorf("%w: registry", ErrMissingDependency)
	case d.Occupancy == nil:
		return fmt.Errorf("%w: occupancy", ErrMissingDependency)
	case d.Terrain == nil:
		return fmt.Errorf("%w: terrain oracle", ErrMissingDependency)
	case d.Arena == nil:
		return fmt.Errorf("%w: actor arena", ErrMissingDependency)
	case d.Executor == nil:
		return fmt.Errorf("%w: executor", ErrMissingDependency)
	}
	return nil
}

// TurnOutcome is everything one RunTurn produced
type TurnOutcome struct {
	TurnID         uint64
	Actions        []action.ResolvedAction // Every slot's actions, slot by slot
	Advanced       bool                    // Turn consumed and executor quiescent
	PlayerRejected bool                    // Player command degraded to a facing update
	Timeouts       []core.ActorID          // Actors whose dispatched action was force-cleared
	Slots          int                     // Time slots actually run
}

// CommandSource is a player thinker whose pending command can be inspected before the turn
type CommandSource interface {
	Peek() (think.Command, bool)
	Discard()
	PredictDestination(from core.Cell) core.Cell
}

// Orchestrator sequences TurnInit, PlayerWaitInput, per-slot Observation/Think/Resolve/Execute and Cleanup
// RunTurn must not be called concurrently
type Orchestrator struct {
	cfg     config.Config
	logger  *log.Logger
	clock   Clock
	metrics *status.Registry
	bus     *event.Bus

	mu   sync.Mutex
	deps Deps

	resolver *resolver.Resolver
	ledger   *think.Ledger
	fields   *navigation.FieldCache
	pending  []inflight // Dispatched actions of the running turn not yet seen complete
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithClock(c Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

func WithMetrics(r *status.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithBus routes phase notifications to b
func WithBus(b *event.Bus) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.bus = b
		}
	}
}

// New creates an orchestrator, missing deps are reported at turn init, not here
func New(cfg config.Config, deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		logger:  log.New(io.Discard, "", 0),
		clock:   SystemClock{},
		metrics: status.NewRegistry(),
		bus:     event.NewBus(nil),
		deps:    deps,
		ledger:  think.NewLedger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.resolver = resolver.New(o.logger)
	return o
}

// Attach overlays the non-nil fields of d on the current dependencies
func (o *Orchestrator) Attach(d Deps) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if d.Registry != nil {
		o.deps.Registry = d.Registry
	}
	if d.Field != nil {
		o.deps.Field = d.Field
	}
	if d.Occupancy != nil {
		o.deps.Occupancy = d.Occupancy
	}
	if d.Terrain != nil {
		o.deps.Terrain = d.Terrain
		if d.Field == nil {
			o.deps.Field = nil // Rebuilt over the new oracle at next init
		}
	}
	if d.Arena != nil {
		o.deps.Arena = d.Arena
	}
	if d.Executor != nil {
		o.deps.Executor = d.Executor
	}
}

// Bus returns the notification bus
func (o *Orchestrator) Bus() *event.Bus {
	return o.bus
}

// Metrics returns the metric registry
func (o *Orchestrator) Metrics() *status.Registry {
	return o.metrics
}

func (o *Orchestrator) snapshot() Deps {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deps
}

func (o *Orchestrator) publish(n event.Notification) {
	if o.cfg.Log.Verbose {
		o.logger.Printf("[DEBUG] %v", n)
	}
	o.bus.Publish(n)
}

// Spawn adds an actor to the arena, places it on cell and registers its stable identity
func (o *Orchestrator) Spawn(rec actor.Actor, cell core.Cell) (core.ActorID, error) {
	d := o.snapshot()
	if d.Arena == nil || d.Occupancy == nil || d.Registry == nil {
		return core.NoActor, fmt.Errorf("spawn %q: %w", rec.Name, ErrMissingDependency)
	}
	if d.Terrain != nil && !d.Terrain.IsWalkable(cell) {
		return core.NoActor, fmt.Errorf("spawn %q at %v: %w", rec.Name, cell, ErrBlockedCell)
	}

	id := d.Arena.Spawn(rec)
	if err := d.Occupancy.Place(id, cell); err != nil {
		d.Arena.Despawn(id)
		return core.NoActor, fmt.Errorf("spawn %q at %v: %w", rec.Name, cell, err)
	}
	d.Registry.Register(id)
	return id, nil
}

// Despawn removes the actor from every subsystem, its generation order is retired
func (o *Orchestrator) Despawn(id core.ActorID) {
	d := o.snapshot()
	if d.Occupancy != nil {
		d.Occupancy.Remove(id)
	}
	if d.Registry != nil {
		d.Registry.Unregister(id)
	}
	if d.Arena != nil {
		d.Arena.Despawn(id)
	}
}
