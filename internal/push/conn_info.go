package push

import "time"

// Transport labels.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "ws"
)

// ConnInfo describes the connection behind a client.
type ConnInfo struct {
	Transport   string
	IP          string
	UserAgent   string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
