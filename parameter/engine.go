package parameter

import "time"

// Turn Pipeline Timing
const (
	// BarrierPollInterval is the interval between completion polls while awaiting dispatched actions
	BarrierPollInterval = 10 * time.Millisecond

	// BarrierTimeout bounds one barrier wait before in-flight actions are force-cleared
	BarrierTimeout = 2 * time.Second

	// QuiescenceRetryDelay is the delay before the single quiescence re-check
	QuiescenceRetryDelay = 100 * time.Millisecond

	// InitRetryDelay is the delay between turn initialization attempts
	InitRetryDelay = 50 * time.Millisecond
)

// Turn Pipeline Limits
const (
	// InitMaxAttempts is the number of turn initialization attempts before a hard failure
	InitMaxAttempts = 3

	// MaxTimeSlots is the default number of time slots per turn (fast actors act twice)
	MaxTimeSlots = 2

	// EventQueueSize is the fixed capacity of the notification ring buffer
	EventQueueSize = 256

	// EventBufferMask is the bitmask for fast modulo operations (256 - 1)
	EventBufferMask = 255
)
