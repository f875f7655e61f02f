package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/provider"
)

// respondProviderError answers with the provider's status and the message
// found in its error body. Failures without a status become 502.
func respondProviderError(c *gin.Context, op string, err error) {
	log.Printf("%s failed request_id=%s: %v", op, requestIDFromContext(c), err)

	if errors.Is(err, provider.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment provider is not configured"})
		return
	}

	f := logstream.ClassifyError(err)
	status := f.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	details, _ := f.Decode()
	c.JSON(status, gin.H{"error": f.Message(), "details": details})
}

// writeRaw relays a provider payload unchanged.
func writeRaw(c *gin.Context, status int, raw json.RawMessage) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	c.Data(status, "application/json; charset=utf-8", raw)
}
