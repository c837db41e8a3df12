package events

import (
	"fmt"
	"os"
	"sync"
)

// Handler receives the payload of an emitted event.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus is a synchronous publish/subscribe surface. Handlers for an event
// are invoked in subscription order; a panicking handler is recovered so
// it cannot prevent later handlers from running.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]*subscription
	nextID uint64
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// On subscribes handler to the named event and returns an unsubscribe
// function. The returned function is idempotent.
func (b *Bus) On(name string, handler Handler) func() {
	return b.subscribe(name, handler, false)
}

// Once subscribes handler for a single delivery. The handler is removed
// before it is invoked, so re-emitting from inside the handler does not
// re-trigger it.
func (b *Bus) Once(name string, handler Handler) func() {
	return b.subscribe(name, handler, true)
}

func (b *Bus) subscribe(name string, handler Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, once: once}
	b.subs[name] = append(b.subs[name], sub)

	id := sub.id
	return func() { b.off(name, id) }
}

func (b *Bus) off(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	for i, sub := range list {
		if sub.id == id {
			b.subs[name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Emit delivers payload to all handlers subscribed to name, in
// subscription order. Emit returns after every handler has run.
func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	list := b.subs[name]
	handlers := make([]*subscription, len(list))
	copy(handlers, list)

	// Once-handlers are removed before delivery.
	remaining := list[:0]
	for _, sub := range list {
		if !sub.once {
			remaining = append(remaining, sub)
		}
	}
	b.subs[name] = remaining
	b.mu.Unlock()

	for _, sub := range handlers {
		invoke(name, sub.handler, payload)
	}
}

// SubscriberCount returns the number of live subscriptions for name.
func (b *Bus) SubscriberCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}

func invoke(name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "warning: handler for %s panicked: %v\n", name, r)
		}
	}()
	h(payload)
}
