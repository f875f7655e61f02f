package push

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sse"
)

// SSESink writes server-sent events to an HTTP response.
type SSESink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSESink prepares w for event streaming and writes the stream headers.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("push: response writer does not support flushing")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &SSESink{w: w, flusher: flusher}, nil
}

func (s *SSESink) WriteEvent(event string, data []byte) error {
	if err := sse.Encode(s.w, sse.Event{Event: event, Data: string(data)}); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteHeartbeat writes an SSE comment line, which clients ignore.
func (s *SSESink) WriteHeartbeat() error {
	if _, err := io.WriteString(s.w, ":heartbeat\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Close is a no-op; the stream ends when the handler returns.
func (s *SSESink) Close() error {
	return nil
}
