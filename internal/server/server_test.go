package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nerdcon-demo/internal/config"
	"nerdcon-demo/internal/mocks"
	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/state"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            3001,
		Environment:     "test",
		CORSOrigin:      "http://localhost:5173",
		ServiceName:     "nerdcon-demo",
		StraddleEnv:     "sandbox",
		EnableLogStream: true,
		SSEHeartbeat:    time.Second,
		PushBuffer:      8,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *mocks.PublisherMock) {
	t.Helper()
	pub := new(mocks.PublisherMock)
	pub.On("Close").Return(nil)
	s, err := New(cfg, WithProvider(new(mocks.ProviderMock)), WithPublisher(pub))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, pub
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"environment":"sandbox"`)
	assert.NotEmpty(t, rec.Header().Get("Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "demo_http_requests_total")
}

func TestCORSPreflightAllowsTracingHeaders(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/charges", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStoreEventsArePublished(t *testing.T) {
	s, pub := newTestServer(t, testConfig())

	var (
		mu    sync.Mutex
		names []string
	)
	pub.On("Publish", mock.Anything, mock.Anything, mock.AnythingOfType("observability.EventEnvelope")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			names = append(names, args.String(1))
		}).Return(nil)

	s.Store.SetCustomer(models.Customer{ID: "cus_1"})
	s.Store.Reset()

	want := []string{
		"state_events.customer",
		"state_events.change",
		"state_events.reset",
		"state_events.change",
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) == len(want)
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, names)
}

// stallPublisher blocks every publish until its context ends.
type stallPublisher struct{}

func (stallPublisher) Publish(ctx context.Context, _ string, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stallPublisher) Close() error { return nil }

func TestStalledBrokerDoesNotBlockMutations(t *testing.T) {
	s, err := New(testConfig(), WithProvider(new(mocks.ProviderMock)), WithPublisher(stallPublisher{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	start := time.Now()
	s.Store.SetCustomer(models.Customer{ID: "cus_1"})
	s.Store.SetCharge(models.Charge{ID: "ch_1"})
	s.Store.Reset()

	assert.Less(t, time.Since(start), publishTimeout/4)
	assert.Nil(t, s.Store.State().Customer)
}

func TestEventMirrorDropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		sent []string
	)
	m := newEventMirror(1, func(ctx context.Context, key string, _ observability.EventEnvelope) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, key)
		return nil
	})
	t.Cleanup(m.close)

	m.enqueue(state.EventCustomer, nil)
	require.Eventually(t, func() bool { return len(m.queue) == 0 }, time.Second, time.Millisecond)
	m.enqueue(state.EventPaykey, nil)
	m.enqueue(state.EventCharge, nil)

	assert.Equal(t, int64(1), m.dropped.Load())
	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sent) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"state_events.customer", "state_events.paykey"}, sent)
}

func TestResetRouteClearsEverything(t *testing.T) {
	s, pub := newTestServer(t, testConfig())
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.Store.SetCharge(models.Charge{ID: "ch_1"})

	var resets int
	s.Store.Subscribe(state.EventReset, func(any) { resets++ })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.Store.State().Charge)
	assert.Equal(t, 1, resets)
	assert.Equal(t, 1, s.Requests.Len())
}

func TestUnmaskRouteIsGated(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/cus_1/unmask", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseDetachesPublisher(t *testing.T) {
	s, pub := newTestServer(t, testConfig())
	require.NoError(t, s.Close())

	s.Store.SetCustomer(models.Customer{ID: "cus_1"})

	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, observability.PublishEvent(context.Background(), "x", observability.EventEnvelope{}))
}
