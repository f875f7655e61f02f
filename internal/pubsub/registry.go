// Package pubsub is a synchronous, in-process observer registry.
package pubsub

import (
	"log"
	"sync"
)

// Listener receives the payload of an emitted event.
type Listener func(payload any)

type entry struct {
	id uint64
	fn Listener
}

// Registry maps event names to ordered listener lists.
type Registry struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{listeners: make(map[string][]entry)}
}

// Subscription identifies one registered listener.
type Subscription struct {
	registry *Registry
	event    string
	id       uint64
}

// On registers fn for event. Listeners run in registration order.
func (r *Registry) On(event string, fn Listener) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners[event] = append(r.listeners[event], entry{id: r.nextID, fn: fn})
	return Subscription{registry: r, event: event, id: r.nextID}
}

// Off removes the listener. Removing twice is a no-op.
func (s Subscription) Off() {
	if s.registry == nil {
		return
	}
	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.listeners[s.event]
	for i, e := range list {
		if e.id == s.id {
			next := make([]entry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(r.listeners, s.event)
			} else {
				r.listeners[s.event] = next
			}
			return
		}
	}
}

// Count returns the number of listeners registered for event.
func (r *Registry) Count(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[event])
}

// Emit calls every listener of event on the caller's goroutine. A panicking
// listener is logged and skipped; the remaining listeners still run.
func (r *Registry) Emit(event string, payload any) {
	r.mu.RLock()
	list := r.listeners[event]
	r.mu.RUnlock()

	for _, e := range list {
		invoke(event, e.fn, payload)
	}
}

// EmitEach is Emit with a fresh payload from next for every listener, so a
// listener that mutates its payload cannot affect the ones after it.
func (r *Registry) EmitEach(event string, next func() any) {
	r.mu.RLock()
	list := r.listeners[event]
	r.mu.RUnlock()

	for _, e := range list {
		invoke(event, e.fn, next())
	}
}

func invoke(event string, fn Listener, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("pubsub listener panic event=%s: %v", event, rec)
		}
	}()
	fn(payload)
}
