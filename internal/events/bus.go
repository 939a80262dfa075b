// Package events is a process-wide broadcast bus for background
// resource-loading signals. Listeners register with Subscribe and must call
// the returned function on teardown.
package events

import (
	"sync"
)

// Event is a message published on the Bus.
type Event interface {
	EventName() string
}

// ResourceProgress reports background resource-loading progress (0-100).
type ResourceProgress struct {
	Percent int
}

// EventName implements Event.
func (ResourceProgress) EventName() string { return "resource-progress" }

// ResourcesReady is published once the resource cache finished preloading.
type ResourcesReady struct{}

// EventName implements Event.
func (ResourcesReady) EventName() string { return "ready" }

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Bus fans events out to subscribed handlers.
// Thread-safe for concurrent access.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
}

var (
	instance *Bus
	once     sync.Once
)

// Default returns the process-wide Bus.
func Default() *Bus {
	once.Do(func() {
		instance = NewBus()
	})
	return instance
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler, 4)}
}

// Subscribe registers h and returns the function that deregisters it.
// The returned function is idempotent.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.mu.Unlock()

	var done sync.Once
	return func() {
		done.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every handler registered at the time of the call.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
