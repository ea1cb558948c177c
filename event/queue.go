package event

import (
	"sync/atomic"

	"github.com/lixenwraith/vi-tactics/parameter"
)

// Queue is a lock-free MPSC ring buffer of notifications for hosts that poll
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer (host loop)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest notifications overwritten when full
type Queue struct {
	items     [parameter.EventQueueSize]Notification
	published [parameter.EventQueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64                         // Read index
	tail      atomic.Uint64                         // Write index
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push adds a notification using lock-free CAS with published flags pattern
func (q *Queue) Push(n Notification) {
	for {
		currentTail := q.tail.Load()
		nextTail := currentTail + 1

		if q.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & parameter.EventBufferMask

			q.items[idx] = n
			q.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread items
			currentHead := q.head.Load()
			if nextTail-currentHead > parameter.EventQueueSize {
				q.head.CompareAndSwap(currentHead, nextTail-parameter.EventQueueSize)
			}
			return
		}
	}
}

// Consume returns all pending notifications in FIFO order and advances head
func (q *Queue) Consume() []Notification {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		maxAvailable := currentTail - currentHead
		if maxAvailable > parameter.EventQueueSize {
			maxAvailable = parameter.EventQueueSize
			currentHead = currentTail - parameter.EventQueueSize
		}

		result := make([]Notification, 0, maxAvailable)
		for i := uint64(0); i < maxAvailable; i++ {
			idx := (currentHead + i) & parameter.EventBufferMask

			if !q.published[idx].Load() {
				break // Writer incomplete
			}

			result = append(result, q.items[idx])
			q.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if q.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns approximate pending count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	diff := int(tail - head)
	if diff > parameter.EventQueueSize {
		return parameter.EventQueueSize
	}
	return diff
}
