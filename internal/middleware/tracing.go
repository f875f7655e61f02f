package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/tracing"
)

// TracingKey is the gin context key holding the tracing.Context.
const TracingKey = "tracing"

const maxCapturedBody = 64 << 10

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	Requests *logs.Store
	Stream   *logstream.Stream
	// StreamingPrefixes lists path prefixes whose response bodies are never
	// captured (long-lived push endpoints).
	StreamingPrefixes []string
}

// Tracing stamps every request with request, correlation and idempotency
// identifiers, echoes them on the response, and records the request in both
// logs once it completes.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		tc := tracing.Context{
			RequestID:     headerOrNew(c, tracing.HeaderRequestID),
			CorrelationID: headerOrNew(c, tracing.HeaderCorrelationID),
			StartTime:     start,
		}
		if tracing.IsMutating(c.Request.Method) {
			tc.IdempotencyKey = headerOrNew(c, tracing.HeaderIdempotencyKey)
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			tc.TraceID = sc.TraceID().String()
		}

		c.Set(TracingKey, tc)
		c.Request = c.Request.WithContext(tracing.WithContext(c.Request.Context(), tc))

		c.Header(tracing.HeaderRequestID, tc.RequestID)
		c.Header(tracing.HeaderCorrelationID, tc.CorrelationID)
		if tc.IdempotencyKey != "" {
			c.Header(tracing.HeaderIdempotencyKey, tc.IdempotencyKey)
		}

		method := c.Request.Method
		path := c.Request.URL.Path
		reqBody := captureRequestBody(c.Request)

		if cfg.Stream != nil {
			cfg.Stream.Add(logstream.Entry{
				Type:          logstream.TypeRequest,
				Timestamp:     start.UTC(),
				Method:        method,
				Path:          path,
				RequestBody:   reqBody,
				RequestID:     tc.RequestID,
				CorrelationID: tc.CorrelationID,
			})
		}

		var writer *bodyWriter
		if !isStreaming(path, cfg.StreamingPrefixes) {
			writer = &bodyWriter{ResponseWriter: c.Writer}
			c.Writer = writer
		}

		defer func() {
			rec := recover()
			status := c.Writer.Status()
			if rec != nil {
				status = http.StatusInternalServerError
			}
			var respBody any
			if writer != nil {
				respBody = decodeJSON(writer.Header().Get("Content-Type"), writer.buf.Bytes())
			}
			duration := time.Since(start).Milliseconds()

			if cfg.Requests != nil {
				cfg.Requests.Add(logs.Entry{
					RequestID:      tc.RequestID,
					CorrelationID:  tc.CorrelationID,
					IdempotencyKey: tc.IdempotencyKey,
					Method:         method,
					Path:           path,
					StatusCode:     status,
					Duration:       duration,
					RequestBody:    reqBody,
					ResponseBody:   respBody,
				})
			}
			if cfg.Stream != nil {
				cfg.Stream.Add(logstream.Entry{
					Type:          logstream.TypeResponse,
					Method:        method,
					Path:          path,
					StatusCode:    status,
					ResponseBody:  respBody,
					Duration:      duration,
					RequestID:     tc.RequestID,
					CorrelationID: tc.CorrelationID,
				})
			}
			if rec != nil {
				panic(rec)
			}
		}()

		c.Next()
	}
}

// TracingFromContext returns the identifiers stamped by Tracing. Outside the
// middleware it returns freshly generated ones.
func TracingFromContext(c *gin.Context) tracing.Context {
	if val, ok := c.Get(TracingKey); ok {
		if tc, ok := val.(tracing.Context); ok {
			return tc
		}
	}
	return tracing.Context{RequestID: tracing.NewID(), CorrelationID: tracing.NewID(), StartTime: time.Now()}
}

func headerOrNew(c *gin.Context, name string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return tracing.NewID()
}

func isStreaming(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func captureRequestBody(r *http.Request) any {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxCapturedBody+1))
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), rest), rest}
	if err != nil || len(data) > maxCapturedBody {
		return nil
	}
	return decodeJSON(r.Header.Get("Content-Type"), data)
}

func decodeJSON(contentType string, data []byte) any {
	if len(data) == 0 || !strings.Contains(contentType, "json") {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

// bodyWriter keeps a bounded copy of the response body.
type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	if remaining := maxCapturedBody - w.buf.Len(); remaining > 0 {
		if len(b) > remaining {
			w.buf.Write(b[:remaining])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
