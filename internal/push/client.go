package push

import (
	"context"
	"sync"
	"time"
)

// Sink writes frames to one subscriber connection. Only the client's Run
// goroutine calls WriteEvent and WriteHeartbeat.
type Sink interface {
	WriteEvent(event string, data []byte) error
	WriteHeartbeat() error
	Close() error
}

// Client is one connected subscriber.
type Client struct {
	ID   string
	Info ConnInfo

	hub       *Hub
	sink      Sink
	send      chan frame
	done      chan struct{}
	closeOnce sync.Once
	reason    error
}

func newClient(h *Hub, id string, sink Sink, info ConnInfo, queueSize int) *Client {
	return &Client{
		ID:   id,
		Info: info,
		hub:  h,
		sink: sink,
		send: make(chan frame, queueSize),
		done: make(chan struct{}),
	}
}

// Done is closed once the client has been disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the disconnect reason, nil while connected.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.reason
	default:
		return nil
	}
}

// Close disconnects the client and removes it from the hub. Calling Close
// more than once is a no-op.
func (c *Client) Close() {
	c.disconnect(nil)
}

// Run writes queued frames and heartbeats to the sink until ctx ends, the
// client is disconnected, or a write fails. A write failure disconnects the
// client and is returned.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.hub.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.disconnect(ctx.Err())
			return nil
		case <-c.done:
			return nil
		case f := <-c.send:
			if err := c.sink.WriteEvent(f.event, f.data); err != nil {
				c.disconnect(err)
				return err
			}
		case <-ticker.C:
			if err := c.sink.WriteHeartbeat(); err != nil {
				c.disconnect(err)
				return err
			}
		}
	}
}

// enqueue queues f without blocking. It reports false when the queue is full.
func (c *Client) enqueue(f frame) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *Client) disconnect(reason error) {
	c.closeOnce.Do(func() {
		c.reason = reason
		close(c.done)
		c.hub.remove(c, reason)
		_ = c.sink.Close()
	})
}
