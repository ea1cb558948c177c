package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat is a float64 stored as bits, zero value reads 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add atomically adds delta and returns the new value
func (f *AtomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Max raises the value to val if larger, returns the stored value
func (f *AtomicFloat) Max(val float64) float64 {
	for {
		old := f.bits.Load()
		cur := math.Float64frombits(old)
		if val <= cur {
			return cur
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(val)) {
			return val
		}
	}
}

// MaxStringLen bounds stored strings
const MaxStringLen = 32

// AtomicString holds a short label, zero value reads ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the label, truncating to MaxStringLen bytes
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	s.ptr.Store(&val)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
