// Package tracing carries the per-request correlation identifiers.
package tracing

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Header names used on inbound requests, responses and provider calls.
const (
	HeaderRequestID      = "Request-Id"
	HeaderCorrelationID  = "Correlation-Id"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Context holds the identifiers stamped on one request.
type Context struct {
	RequestID     string
	CorrelationID string
	// IdempotencyKey is empty for read-only methods.
	IdempotencyKey string
	StartTime      time.Time
	// TraceID is the OpenTelemetry trace id when a span is recording.
	TraceID string
}

// Headers returns the identifiers to forward to the provider.
func (t Context) Headers() map[string]string {
	headers := map[string]string{
		HeaderRequestID:     t.RequestID,
		HeaderCorrelationID: t.CorrelationID,
	}
	if t.IdempotencyKey != "" {
		headers[HeaderIdempotencyKey] = t.IdempotencyKey
	}
	return headers
}

// Apply sets the forwarding headers on h.
func (t Context) Apply(h http.Header) {
	for k, v := range t.Headers() {
		if v != "" {
			h.Set(k, v)
		}
	}
}

// Elapsed returns the time since the request arrived.
func (t Context) Elapsed() time.Duration {
	return time.Since(t.StartTime)
}

// IsMutating reports whether method creates or updates a resource and
// therefore carries an idempotency key.
func IsMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

var (
	newRandom     = uuid.NewRandom
	fallbackCount atomic.Uint64
)

// NewID returns a random UUID. If the entropy source fails it falls back to a
// name-based UUID derived from the clock and a counter, so it never blocks
// and never returns an empty string.
func NewID() string {
	id, err := newRandom()
	if err == nil {
		return id.String()
	}
	n := fallbackCount.Add(1)
	seed := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(n, 10)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

type contextKey struct{}

// WithContext returns ctx carrying t.
func WithContext(ctx context.Context, t Context) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext extracts the tracing identifiers from ctx.
func FromContext(ctx context.Context) (Context, bool) {
	t, ok := ctx.Value(contextKey{}).(Context)
	return t, ok
}
