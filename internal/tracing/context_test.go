package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsUniqueUUID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestNewIDFallsBackWhenEntropyFails(t *testing.T) {
	orig := newRandom
	newRandom = func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }
	t.Cleanup(func() { newRandom = orig })

	a, b := NewID(), NewID()
	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestIsMutating(t *testing.T) {
	assert.True(t, IsMutating(http.MethodPost))
	assert.True(t, IsMutating(http.MethodPatch))
	assert.True(t, IsMutating(http.MethodPut))
	assert.False(t, IsMutating(http.MethodGet))
	assert.False(t, IsMutating(http.MethodDelete))
	assert.False(t, IsMutating(http.MethodHead))
}

func TestHeadersOmitEmptyIdempotencyKey(t *testing.T) {
	tc := Context{RequestID: "r", CorrelationID: "c"}
	assert.Equal(t, map[string]string{HeaderRequestID: "r", HeaderCorrelationID: "c"}, tc.Headers())

	tc.IdempotencyKey = "k"
	h := http.Header{}
	tc.Apply(h)
	assert.Equal(t, "k", h.Get("idempotency-key"))
	assert.Equal(t, "r", h.Get("request-id"))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithContext(context.Background(), Context{RequestID: "req"})
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "req", got.RequestID)
}
