package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/middleware"
	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/state"
	"nerdcon-demo/internal/telemetry"
)

// EventWebhook is pushed to subscribers with the raw webhook envelope.
const EventWebhook = "webhook"

// WebhookHandler receives provider webhooks and folds them into the demo state.
type WebhookHandler struct {
	store  *state.Store
	push   Broadcaster
	stream *logstream.Stream
	audit  *telemetry.AuditEmitter
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(store *state.Store, push Broadcaster, stream *logstream.Stream, audit *telemetry.AuditEmitter) *WebhookHandler {
	return &WebhookHandler{store: store, push: push, stream: stream, audit: audit}
}

// Receive handles POST /api/webhooks/straddle. Updates apply only when the
// resource id matches the tracked entity.
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}
	var event models.WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}
	var data models.WebhookData
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Printf("webhook %s: decode data: %v", event.EventID, err)
		}
	}

	log.Printf("Received webhook event_type=%s event_id=%s resource_id=%s", event.EventType, event.EventID, data.ID)

	tc := middleware.TracingFromContext(c)
	h.stream.Add(logstream.Entry{
		Type:           logstream.TypeWebhook,
		EventType:      event.EventType,
		EventID:        event.EventID,
		WebhookPayload: json.RawMessage(raw),
		RequestID:      tc.RequestID,
		CorrelationID:  tc.CorrelationID,
	})
	h.push.Broadcast(EventWebhook, json.RawMessage(raw))

	applied := h.apply(event.EventType, data)
	h.audit.Emit(c.Request.Context(), auditRecord(c, "INFO", "webhook received", map[string]string{
		"event_type": event.EventType,
		"event_id":   event.EventID,
		"applied":    strconv.FormatBool(applied),
	}))

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// apply updates the tracked entity named by eventType ("<resource>.<action>.v1").
func (h *WebhookHandler) apply(eventType string, data models.WebhookData) bool {
	resource, _, _ := strings.Cut(eventType, ".")
	if data.ID == "" {
		return false
	}
	switch resource {
	case "customer":
		return h.store.UpdateCustomerIf(data.ID, models.CustomerPatch{
			VerificationStatus: data.Status,
			RiskScore:          data.RiskScore,
		})
	case "paykey":
		if data.Status == nil {
			return false
		}
		return h.store.SetPaykeyStatusIf(data.ID, *data.Status)
	case "charge":
		return h.store.UpdateChargeIf(data.ID, models.ChargePatch{
			Status:        data.Status,
			CompletedAt:   data.CompletedAt,
			FailureReason: data.FailureReason,
		})
	default:
		log.Printf("Unhandled webhook type: %s", eventType)
		return false
	}
}
