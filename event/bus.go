package event

import "sync"

// Observer receives notifications synchronously on the publishing goroutine
type Observer func(Notification)

// Bus fans notifications out to observers and into an optional poll queue
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
	queue     *Queue
}

// NewBus creates a bus, queue may be nil when no host polls
func NewBus(queue *Queue) *Bus {
	return &Bus{queue: queue}
}

// Subscribe adds an observer, observers are called in subscription order
func (b *Bus) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Publish delivers n to every observer, then queues it
func (b *Bus) Publish(n Notification) {
	if b == nil {
		return
	}
	b.mu.RLock()
	observers := b.observers
	b.mu.RUnlock()

	for _, fn := range observers {
		fn(n)
	}
	if b.queue != nil {
		b.queue.Push(n)
	}
}

// Queue returns the poll queue, nil if none
func (b *Bus) Queue() *Queue {
	return b.queue
}
