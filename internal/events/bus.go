// Package events carries cross-controller notifications. The bus is owned
// by the composition root and injected into the components that publish or
// subscribe; there is no process-global dispatch target.
package events

import (
	"sort"
	"sync"
)

// TaskInvalidation signals that local task data may be stale and should be
// refetched, typically because an assistant tool call mutated tasks.
type TaskInvalidation struct {
	// ToolName is the assistant tool that caused the mutation.
	ToolName string
	// Result is the raw result text the tool reported, if any.
	Result string
}

// Handler receives published invalidation events.
type Handler func(TaskInvalidation)

// Bus is a synchronous in-process publish/subscribe channel. Handlers run
// on the publishing goroutine, in subscription order.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers ev to every current subscriber. Handlers are invoked
// outside the bus lock so a handler may subscribe or unsubscribe.
func (b *Bus) Publish(ev TaskInvalidation) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	// Deliver in subscription order for deterministic behavior.
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
