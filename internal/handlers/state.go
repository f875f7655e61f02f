package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/state"
	"nerdcon-demo/internal/telemetry"
)

// StateHandler serves the demo state and the developer logs.
type StateHandler struct {
	store    *state.Store
	requests *logs.Store
	stream   *logstream.Stream
	audit    *telemetry.AuditEmitter
}

// NewStateHandler builds a StateHandler.
func NewStateHandler(store *state.Store, requests *logs.Store, stream *logstream.Stream, audit *telemetry.AuditEmitter) *StateHandler {
	return &StateHandler{store: store, requests: requests, stream: stream, audit: audit}
}

// GetState returns the current customer, paykey and charge.
func (h *StateHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

// Reset clears the demo state and both logs. Subscribers receive
// state:reset followed by state:change.
func (h *StateHandler) Reset(c *gin.Context) {
	h.store.Reset()
	h.requests.Clear()
	h.stream.Clear()

	h.audit.Emit(c.Request.Context(), auditRecord(c, "INFO", "demo state reset", nil))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Demo state reset"})
}

// GetLogs returns the request log, newest first.
func (h *StateHandler) GetLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.requests.All())
}

// GetLogStream returns the log stream, newest first, optionally filtered by
// a comma separated types list.
func (h *StateHandler) GetLogStream(c *gin.Context) {
	var types []logstream.EntryType
	for _, raw := range strings.Split(c.Query("types"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t := logstream.EntryType(raw)
		if !t.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown log type: " + raw})
			return
		}
		types = append(types, t)
	}
	c.JSON(http.StatusOK, h.stream.Filter(types...))
}

// GetOutcomes lists the sandbox outcomes per resource.
func (h *StateHandler) GetOutcomes(c *gin.Context) {
	c.JSON(http.StatusOK, models.Outcomes)
}
