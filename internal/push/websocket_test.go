package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T, hub *Hub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := hub.AddClient("ws-1", NewWebSocketSink(conn), ConnInfo{Transport: TransportWebSocket})
		go DrainReads(conn, c)
		_ = c.Run(context.Background())
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSilentPeerIsDisconnected(t *testing.T) {
	hub := NewHub(WithHeartbeat(50 * time.Millisecond))
	conn, _, err := websocket.DefaultDialer.Dial(newWSServer(t, hub), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Never reading means pings are never answered.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPeerAnsweringPingsStaysConnected(t *testing.T) {
	hub := NewHub(WithHeartbeat(20 * time.Millisecond))
	conn, _, err := websocket.DefaultDialer.Dial(newWSServer(t, hub), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, 1, hub.ClientCount())
}
