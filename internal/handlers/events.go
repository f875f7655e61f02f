package handlers

import (
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"nerdcon-demo/internal/middleware"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/push"
)

// EventsHandler attaches push subscribers to the hub.
type EventsHandler struct {
	hub *push.Hub
}

// NewEventsHandler builds an EventsHandler.
func NewEventsHandler(hub *push.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream serves a server-sent event subscription until the client leaves.
func (h *EventsHandler) Stream(c *gin.Context) {
	sink, err := push.NewSSESink(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	client := h.hub.AddClient(uuid.NewString(), sink, connInfo(c, push.TransportSSE))
	if err := client.Run(c.Request.Context()); err != nil {
		log.Printf("sse client %s ended: %v", client.ID, err)
	}
}

// WebSocket serves the same subscription over a WebSocket connection.
func (h *EventsHandler) WebSocket(c *gin.Context) {
	_, span := otel.Tracer("nerdcon-demo/push").Start(c.Request.Context(), "ws.handshake")
	conn, err := push.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		span.End()
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	span.End()

	client := h.hub.AddClient(uuid.NewString(), push.NewWebSocketSink(conn), connInfo(c, push.TransportWebSocket))
	go push.DrainReads(conn, client)
	if err := client.Run(c.Request.Context()); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Printf("ws client %s ended: %v", client.ID, err)
	}
}

func connInfo(c *gin.Context, transport string) push.ConnInfo {
	tc := middleware.TracingFromContext(c)
	return push.ConnInfo{
		Transport: transport,
		IP:        observability.IPFromRequest(c.Request),
		UserAgent: observability.UserAgentFromRequest(c.Request),
		RequestID: tc.RequestID,
		TraceID:   tc.TraceID,
	}
}
