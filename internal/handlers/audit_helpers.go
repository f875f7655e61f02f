package handlers

import (
	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/middleware"
	"nerdcon-demo/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	return middleware.TracingFromContext(c).RequestID
}

// auditRecord builds an audit record stamped with the request identifiers.
func auditRecord(c *gin.Context, level, text string, fields map[string]string) telemetry.AuditRecord {
	tc := middleware.TracingFromContext(c)
	return telemetry.AuditRecord{
		Level:         level,
		Text:          text,
		RequestID:     tc.RequestID,
		CorrelationID: tc.CorrelationID,
		Fields:        fields,
	}
}
