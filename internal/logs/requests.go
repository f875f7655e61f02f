// Package logs keeps the most recent request/response audit entries in memory.
package logs

import (
	"time"

	"nerdcon-demo/internal/jsonval"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/ringbuf"
)

// DefaultCapacity is the number of entries retained by the request log.
const DefaultCapacity = 100

// Entry is one completed request, either inbound or to the provider.
type Entry struct {
	RequestID        string    `json:"requestId"`
	CorrelationID    string    `json:"correlationId"`
	IdempotencyKey   string    `json:"idempotencyKey,omitempty"`
	Method           string    `json:"method"`
	Path             string    `json:"path"`
	StatusCode       int       `json:"statusCode"`
	Duration         int64     `json:"duration"`
	Timestamp        time.Time `json:"timestamp"`
	StraddleEndpoint string    `json:"straddleEndpoint,omitempty"`
	RequestBody      any       `json:"requestBody,omitempty"`
	ResponseBody     any       `json:"responseBody,omitempty"`
}

// Store is the bounded request log.
type Store struct {
	buf *ringbuf.Buffer[Entry]
}

// NewStore creates a request log holding at most capacity entries.
func NewStore(capacity int) *Store {
	return &Store{buf: ringbuf.NewWithCopy(capacity, copyEntry)}
}

// Add records an entry as the most recent one.
func (s *Store) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if _, evicted := s.buf.Push(e); evicted {
		observability.IncLogEviction("requests")
	}
}

// AddProviderCall records a call made to the provider on behalf of a request.
func (s *Store) AddProviderCall(requestID, correlationID, endpoint, method string, statusCode int, duration time.Duration) {
	s.Add(Entry{
		RequestID:        requestID,
		CorrelationID:    correlationID,
		Method:           method,
		Path:             "/straddle/" + endpoint,
		StatusCode:       statusCode,
		Duration:         duration.Milliseconds(),
		StraddleEndpoint: endpoint,
	})
}

// All returns the entries newest first.
func (s *Store) All() []Entry {
	return s.buf.Items()
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return s.buf.Len()
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.buf.Clear()
}

func copyEntry(e Entry) Entry {
	e.RequestBody = jsonval.Copy(e.RequestBody)
	e.ResponseBody = jsonval.Copy(e.ResponseBody)
	return e
}
