package push

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// Upgrader accepts push subscriptions from any origin; the channel carries
// no credentials.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketSink writes events as JSON text messages and heartbeats as pings.
type WebSocketSink struct {
	conn *websocket.Conn
}

func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

func (s *WebSocketSink) WriteEvent(event string, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(wsMessage{Event: event, Data: data})
}

func (s *WebSocketSink) WriteHeartbeat() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (s *WebSocketSink) Close() error {
	return s.conn.Close()
}

// DrainReads discards inbound messages until the peer goes away, then
// disconnects the client. A peer that leaves a heartbeat ping unanswered for
// one and a half heartbeat intervals is treated as gone. Run it on its own
// goroutine.
func DrainReads(conn *websocket.Conn, c *Client) {
	defer c.Close()
	pongWait := c.hub.heartbeat * 3 / 2
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
