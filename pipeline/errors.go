package pipeline

import "errors"

var (
	// ErrMissingDependency is returned when a required subsystem is not attached
	ErrMissingDependency = errors.New("pipeline: missing dependency")
	// ErrInitFailed wraps the last dependency error after every init attempt failed
	ErrInitFailed = errors.New("pipeline: turn initialization failed")
	// ErrBarrierTimeout is reported for dispatched actions that never completed
	ErrBarrierTimeout = errors.New("pipeline: barrier timeout")
	// ErrIllegalTransition is a phase sequencing bug
	ErrIllegalTransition = errors.New("pipeline: illegal phase transition")
	// ErrBlockedCell is returned when spawning onto impassable terrain
	ErrBlockedCell = errors.New("pipeline: cell not walkable")
)
