package server

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"nerdcon-demo/internal/observability"
)

const mirrorQueueSize = 256

type publishFunc func(ctx context.Context, routingKey string, env observability.EventEnvelope) error

type mirroredEvent struct {
	name    string
	payload any
}

// eventMirror forwards store events to the broker from its own goroutine so
// a slow broker never holds up a store mutation. Events are published in the
// order they were queued; when the queue is full new events are dropped.
type eventMirror struct {
	publish publishFunc
	queue   chan mirroredEvent
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func newEventMirror(size int, publish publishFunc) *eventMirror {
	ctx, cancel := context.WithCancel(context.Background())
	m := &eventMirror{
		publish: publish,
		queue:   make(chan mirroredEvent, size),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go m.loop()
	return m
}

// enqueue never blocks.
func (m *eventMirror) enqueue(name string, payload any) {
	if m.ctx.Err() != nil {
		return
	}
	select {
	case m.queue <- mirroredEvent{name: name, payload: payload}:
	default:
		m.dropped.Add(1)
		observability.IncAMQPPublishDropped()
		log.Printf("state event dropped event=%s: mirror queue full", name)
	}
}

func (m *eventMirror) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.ctx.Done():
			if n := len(m.queue); n > 0 {
				log.Printf("state event mirror stopped with %d unpublished events", n)
			}
			return
		case ev := <-m.queue:
			m.send(ev)
		}
	}
}

func (m *eventMirror) send(ev mirroredEvent) {
	ctx, cancel := context.WithTimeout(m.ctx, publishTimeout)
	defer cancel()
	routingKey := "state_events." + strings.TrimPrefix(ev.name, "state:")
	if err := m.publish(ctx, routingKey, observability.EventEnvelope{
		EventType: "state_events",
		EventName: ev.name,
		Payload:   ev.payload,
	}); err != nil {
		log.Printf("state event publish failed event=%s: %v", ev.name, err)
	}
}

// close stops the mirror and waits for an in-flight publish to return.
func (m *eventMirror) close() {
	m.once.Do(func() {
		m.cancel()
		<-m.done
	})
}
