package provider

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no API key is configured.
var ErrNotConfigured = errors.New("provider: api key not configured")

// APIError is a non-2xx provider response. Its message has the
// "<status> <body>" form the provider SDKs use.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Body)
}

// ErrorBody returns the raw response body.
func (e *APIError) ErrorBody() []byte {
	return e.Body
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}
