package status

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Well-known metric keys fed by the turn pipeline
const (
	KeyTurnCount            = "turn.count"
	KeyTurnStalled          = "turn.stalled"
	KeyResolveDemotions     = "resolve.demotions"
	KeyResolveRaces         = "resolve.races"
	KeyExecuteTimeouts      = "execute.timeouts"
	KeyExecuteDispatched    = "execute.dispatched"
	KeyNavigationExpansions = "navigation.expansions"
	KeyNavigationCapHits    = "navigation.cap_hits"
	KeyNavigationReuses     = "navigation.reuses"
	KeyInitRetries          = "init.retries"
	KeyPhaseCurrent         = "phase.current"
)

// Registry is the central metrics facade
// Callers cache pointers once; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Inc adds delta to the integer metric key
func (r *Registry) Inc(key string, delta int64) int64 {
	return r.Ints.Get(key).Add(delta)
}

// Observe stores d in milliseconds under key
func (r *Registry) Observe(key string, d time.Duration) {
	r.Floats.Get(key).Set(float64(d) / float64(time.Millisecond))
}

// Dump writes every metric as "key value" lines in key order per type
func (r *Registry) Dump(w io.Writer) error {
	var err error
	write := func(key string, v any) {
		if err == nil {
			_, err = fmt.Fprintf(w, "%s %v\n", key, v)
		}
	}
	r.Bools.Range(func(k string, p *atomic.Bool) { write(k, p.Load()) })
	r.Ints.Range(func(k string, p *atomic.Int64) { write(k, p.Load()) })
	r.Floats.Range(func(k string, p *AtomicFloat) { write(k, fmt.Sprintf("%.3f", p.Get())) })
	r.Strings.Range(func(k string, p *AtomicString) { write(k, p.Load()) })
	return err
}
