// Package logstream records every request, response, provider call and
// webhook as separate chronological entries for the developer view.
package logstream

import (
	"strconv"
	"sync/atomic"
	"time"

	"nerdcon-demo/internal/jsonval"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/ringbuf"
)

// DefaultCapacity is the number of entries retained by the stream.
const DefaultCapacity = 200

// EntryType classifies a stream entry.
type EntryType string

const (
	TypeRequest          EntryType = "request"
	TypeResponse         EntryType = "response"
	TypeProviderRequest  EntryType = "straddle-req"
	TypeProviderResponse EntryType = "straddle-res"
	TypeWebhook          EntryType = "webhook"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case TypeRequest, TypeResponse, TypeProviderRequest, TypeProviderResponse, TypeWebhook:
		return true
	}
	return false
}

// Entry is one immutable stream record. Which optional fields are set depends on Type.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EntryType `json:"type"`

	Method      string `json:"method,omitempty"`
	Path        string `json:"path,omitempty"`
	RequestBody any    `json:"requestBody,omitempty"`

	StatusCode   int   `json:"statusCode,omitempty"`
	ResponseBody any   `json:"responseBody,omitempty"`
	Duration     int64 `json:"duration,omitempty"`

	EventType      string `json:"eventType,omitempty"`
	EventID        string `json:"eventId,omitempty"`
	WebhookPayload any    `json:"webhookPayload,omitempty"`

	RequestID     string `json:"requestId,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Stream is the bounded log stream. A disabled stream drops every entry.
type Stream struct {
	buf     *ringbuf.Buffer[Entry]
	enabled bool
	seq     atomic.Uint64
}

// New creates a stream holding at most capacity entries.
func New(capacity int, enabled bool) *Stream {
	return &Stream{buf: ringbuf.NewWithCopy(capacity, copyEntry), enabled: enabled}
}

// Enabled reports whether entries are being recorded.
func (s *Stream) Enabled() bool {
	return s.enabled
}

// Add assigns a fresh id to e and records it as the most recent entry. The
// returned id is empty when the stream is disabled.
func (s *Stream) Add(e Entry) string {
	if !s.enabled {
		return ""
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.ID = s.nextID()
	if _, evicted := s.buf.Push(e); evicted {
		observability.IncLogEviction("stream")
	}
	return e.ID
}

// All returns the entries newest first.
func (s *Stream) All() []Entry {
	if !s.enabled {
		return []Entry{}
	}
	return s.buf.Items()
}

// Filter returns the entries whose type is one of types, newest first.
// With no types it behaves like All.
func (s *Stream) Filter(types ...EntryType) []Entry {
	all := s.All()
	if len(types) == 0 {
		return all
	}
	keep := make(map[EntryType]struct{}, len(types))
	for _, t := range types {
		keep[t] = struct{}{}
	}
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if _, ok := keep[e.Type]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops every entry. Ids are never reused after a clear.
func (s *Stream) Clear() {
	s.buf.Clear()
}

func (s *Stream) nextID() string {
	n := s.seq.Add(1)
	return "log_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + strconv.FormatUint(n, 36)
}

func copyEntry(e Entry) Entry {
	e.RequestBody = jsonval.Copy(e.RequestBody)
	e.ResponseBody = jsonval.Copy(e.ResponseBody)
	e.WebhookPayload = jsonval.Copy(e.WebhookPayload)
	return e
}
