// Package push fans state events out to long-lived subscriber connections.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"nerdcon-demo/internal/observability"
)

// Event names produced by the hub itself.
const (
	EventConnected = "connected"
	EventInitial   = "state:initial"
)

const (
	defaultHeartbeat = 30 * time.Second
	defaultQueueSize = 64
)

var (
	// ErrSlowConsumer is the disconnect reason for a client whose queue overflowed.
	ErrSlowConsumer = errors.New("push: subscriber queue full")
	// ErrHubClosed is the disconnect reason used on shutdown.
	ErrHubClosed = errors.New("push: hub closed")
)

// Hub maintains the set of connected push subscribers.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	heartbeat time.Duration
	queueSize int
	initial   func() any
}

// Option configures a Hub.
type Option func(*Hub)

// WithHeartbeat sets the keep-alive interval for every client.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithQueueSize sets the per-client outbound queue length. Values below two
// are ignored since every client starts with two queued events.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n >= 2 {
			h.queueSize = n
		}
	}
}

// WithInitialState makes every new client receive a state:initial event with
// the value returned by snapshot, right after its connected event.
func WithInitialState(snapshot func() any) Option {
	return func(h *Hub) { h.initial = snapshot }
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:   make(map[string]*Client),
		heartbeat: defaultHeartbeat,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddClient registers a subscriber and queues its connected event. The caller
// must drive the client with Run until the connection ends.
func (h *Hub) AddClient(id string, sink Sink, info ConnInfo) *Client {
	if info.ConnectedAt.IsZero() {
		info.ConnectedAt = time.Now()
	}
	c := newClient(h, id, sink, info, h.queueSize)

	h.mu.Lock()
	previous := h.clients[id]
	c.enqueue(mustFrame(EventConnected, map[string]string{"clientId": id}))
	if h.initial != nil {
		c.enqueue(mustFrame(EventInitial, h.initial()))
	}
	h.clients[id] = c
	count := len(h.clients)
	h.mu.Unlock()

	if previous != nil {
		previous.disconnect(errors.New("push: replaced by new connection"))
	}

	observability.IncPushActive(info.Transport)
	observability.IncPushEvent(info.Transport, "connect")
	h.publishLifecycle(c, "push_connect", "")
	log.Printf("push client %s connected transport=%s. Active clients: %d", id, info.Transport, count)
	return c
}

// RemoveClient disconnects and removes a subscriber. Unknown ids are ignored.
func (h *Hub) RemoveClient(id string) {
	h.mu.RLock()
	c := h.clients[id]
	h.mu.RUnlock()
	if c != nil {
		c.Close()
	}
}

// Broadcast serializes payload once and queues it for every subscriber.
// It never blocks: a subscriber that cannot keep up is disconnected.
func (h *Hub) Broadcast(event string, payload any) {
	f, err := newFrame(event, payload)
	if err != nil {
		log.Printf("push broadcast %s: marshal payload: %v", event, err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	count := len(h.clients)
	for _, c := range h.clients {
		if !c.enqueue(f) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	observability.IncBroadcast(event)
	log.Printf("Broadcasting %s to %d clients", event, count)

	for _, c := range slow {
		c.disconnect(ErrSlowConsumer)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.disconnect(ErrHubClosed)
	}
}

// remove drops c from the registry. Called exactly once per client.
func (h *Hub) remove(c *Client, reason error) {
	h.mu.Lock()
	if h.clients[c.ID] == c {
		delete(h.clients, c.ID)
	}
	count := len(h.clients)
	h.mu.Unlock()

	reasonText := ""
	if reason != nil {
		reasonText = reason.Error()
	}
	observability.DecPushActive(c.Info.Transport)
	observability.IncPushEvent(c.Info.Transport, "disconnect")
	h.publishLifecycle(c, "push_disconnect", reasonText)
	log.Printf("push client %s disconnected reason=%q. Active clients: %d", c.ID, reasonText, count)
}

func (h *Hub) publishLifecycle(c *Client, name, reason string) {
	payload := map[string]interface{}{
		"push": map[string]interface{}{
			"transport":   c.Info.Transport,
			"event":       name,
			"client_id":   c.ID,
			"duration_ms": time.Since(c.Info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"ip":         c.Info.IP,
			"user_agent": c.Info.UserAgent,
			"request_id": c.Info.RequestID,
			"trace_id":   c.Info.TraceID,
		},
	}
	_ = observability.PublishEvent(context.Background(), "push_events."+c.Info.Transport, observability.EventEnvelope{
		EventType: "push_events",
		EventName: name,
		Payload:   payload,
	})
}

type frame struct {
	event string
	data  []byte
}

func newFrame(event string, payload any) (frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return frame{}, err
	}
	return frame{event: event, data: data}, nil
}

func mustFrame(event string, payload any) frame {
	f, err := newFrame(event, payload)
	if err != nil {
		log.Printf("push %s: marshal payload: %v", event, err)
		return frame{event: event, data: []byte("null")}
	}
	return f
}
