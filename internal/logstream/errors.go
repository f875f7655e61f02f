package logstream

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
)

// FailureKind tells how much structure could be recovered from a provider error.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureStructured errors carry a decoded response body.
	FailureStructured
	// FailureStringified errors embed "<status> <body>" in their message.
	FailureStringified
	// FailureOpaque errors carry nothing but their message.
	FailureOpaque
)

// ProviderFailure is a provider error resolved into one of the known shapes.
type ProviderFailure struct {
	Kind       FailureKind
	StatusCode int
	Body       []byte
	Raw        string
}

// BodyCarrier is implemented by provider errors that kept the response body.
type BodyCarrier interface {
	error
	ErrorBody() []byte
}

// StatusCarrier is implemented by provider errors that know their HTTP status.
type StatusCarrier interface {
	error
	HTTPStatus() int
}

var stringifiedPattern = regexp.MustCompile(`(?s)^(\d+)\s+(.+)$`)

// ClassifyError resolves err once into a ProviderFailure. It never panics.
func ClassifyError(err error) ProviderFailure {
	if err == nil {
		return ProviderFailure{Kind: FailureNone}
	}
	raw := err.Error()

	var carrier BodyCarrier
	if errors.As(err, &carrier) && len(carrier.ErrorBody()) > 0 {
		f := ProviderFailure{Kind: FailureStructured, Body: carrier.ErrorBody(), Raw: raw}
		var sc StatusCarrier
		if errors.As(err, &sc) {
			f.StatusCode = sc.HTTPStatus()
		}
		return f
	}

	if m := stringifiedPattern.FindStringSubmatch(raw); m != nil {
		status, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return ProviderFailure{Kind: FailureStringified, StatusCode: status, Body: []byte(m[2]), Raw: raw}
		}
	}

	return ProviderFailure{Kind: FailureOpaque, Raw: raw}
}

// Decode returns the structured error body. A body that is not valid JSON is
// wrapped as {"message": raw}. ok is false when nothing could be recovered.
func (f ProviderFailure) Decode() (body any, ok bool) {
	switch f.Kind {
	case FailureStructured, FailureStringified:
		var v any
		if err := json.Unmarshal(f.Body, &v); err != nil {
			return map[string]any{"message": f.Raw}, true
		}
		return v, true
	default:
		return nil, false
	}
}

// ErrorBody extracts a structured error body from a provider error for logging.
func ErrorBody(err error) (any, bool) {
	return ClassifyError(err).Decode()
}

// Message returns a readable message for the failure: the body's error
// detail or title when present, else the raw error text.
func (f ProviderFailure) Message() string {
	body, ok := f.Decode()
	if !ok {
		return f.Raw
	}
	obj, _ := body.(map[string]any)
	inner, _ := obj["error"].(map[string]any)
	for _, key := range []string{"detail", "title", "message"} {
		if s, ok := inner[key].(string); ok && s != "" {
			return s
		}
	}
	return f.Raw
}
