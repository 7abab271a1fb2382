// Package events delivers typed events to subscribed handlers.
package events

import "sync"

// SubscriptionID identifies a registered handler.
type SubscriptionID uint64

// Bus is a synchronous publish/subscribe hub. Handlers run on the publishing
// goroutine in subscription order, so an event is fully handled before
// Publish returns.
type Bus[T any] struct {
	mu       sync.RWMutex
	nextID   SubscriptionID
	ids      []SubscriptionID
	handlers map[SubscriptionID]func(T)
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[SubscriptionID]func(T)),
	}
}

// Subscribe registers a handler and returns its id.
func (b *Bus[T]) Subscribe(handler func(T)) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[SubscriptionID]func(T))
	}
	b.nextID++
	b.handlers[b.nextID] = handler
	b.ids = append(b.ids, b.nextID)
	return b.nextID
}

// Unsubscribe removes the handler. Unknown ids are ignored.
func (b *Bus[T]) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[id]; !ok {
		return
	}
	delete(b.handlers, id)
	for i, existing := range b.ids {
		if existing == id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered handlers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish sends an event to every handler. The handler list is copied before
// delivery so handlers may subscribe or unsubscribe while being called.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	handlers := make([]func(T), 0, len(b.ids))
	for _, id := range b.ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
