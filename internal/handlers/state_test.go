package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/state"
)

func setupStateRouter() (*gin.Engine, *state.Store, *logs.Store, *logstream.Stream) {
	store := state.NewStore()
	requests := logs.NewStore(logs.DefaultCapacity)
	stream := logstream.New(logstream.DefaultCapacity, true)
	handler := NewStateHandler(store, requests, stream, nil)

	r := newTestRouter(requests, stream)
	r.GET("/api/state", handler.GetState)
	r.POST("/api/reset", handler.Reset)
	r.GET("/api/logs", handler.GetLogs)
	r.GET("/api/log-stream", handler.GetLogStream)
	r.GET("/api/outcomes", handler.GetOutcomes)
	return r, store, requests, stream
}

func TestGetStateEmpty(t *testing.T) {
	router, _, _, _ := setupStateRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/state", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customer":null,"paykey":null,"charge":null}`, rec.Body.String())
}

func TestGetStateReturnsTrackedEntities(t *testing.T) {
	router, store, _, _ := setupStateRouter()
	store.SetCustomer(models.Customer{ID: "cus_1", Name: "Ada"})

	body := decodeBody(t, doJSON(t, router, http.MethodGet, "/api/state", ""))

	customer := body["customer"].(map[string]any)
	assert.Equal(t, "cus_1", customer["id"])
	assert.Nil(t, body["charge"])
}

func TestResetClearsStateAndLogs(t *testing.T) {
	router, store, requests, stream := setupStateRouter()
	store.SetCharge(models.Charge{ID: "ch_1"})
	doJSON(t, router, http.MethodGet, "/api/state", "")
	require.Equal(t, 1, requests.Len())

	var events []string
	store.OnReset(func() { events = append(events, state.EventReset) })
	store.OnChange(func(models.State) { events = append(events, state.EventChange) })

	rec := doJSON(t, router, http.MethodPost, "/api/reset", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	assert.Nil(t, store.State().Charge)
	assert.Equal(t, []string{state.EventReset, state.EventChange}, events)
	// the reset request itself is recorded after the logs were cleared
	assert.Equal(t, 1, requests.Len())
	assert.Equal(t, "/api/reset", requests.All()[0].Path)
	assert.Len(t, stream.Filter(logstream.TypeRequest), 0)
	assert.Len(t, stream.Filter(logstream.TypeResponse), 1)
}

func TestGetLogStreamFiltersByType(t *testing.T) {
	router, _, _, stream := setupStateRouter()
	stream.Add(logstream.Entry{Type: logstream.TypeWebhook, EventType: "charge.event.v1"})
	stream.Add(logstream.Entry{Type: logstream.TypeProviderRequest, Path: "/v1/charges"})

	rec := doJSON(t, router, http.MethodGet, "/api/log-stream?types=webhook,straddle-req", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []logstream.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, logstream.TypeProviderRequest, entries[0].Type)
	assert.Equal(t, logstream.TypeWebhook, entries[1].Type)
}

func TestGetLogStreamRejectsUnknownType(t *testing.T) {
	router, _, _, _ := setupStateRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/log-stream?types=bogus", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLogsNewestFirst(t *testing.T) {
	router, _, requests, _ := setupStateRouter()
	requests.Add(logs.Entry{RequestID: "old", Path: "/a"})
	requests.Add(logs.Entry{RequestID: "new", Path: "/b"})

	rec := doJSON(t, router, http.MethodGet, "/api/logs", "")

	var entries []logs.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].RequestID)
}

func TestGetOutcomes(t *testing.T) {
	router, _, _, _ := setupStateRouter()

	body := decodeBody(t, doJSON(t, router, http.MethodGet, "/api/outcomes", ""))

	assert.Contains(t, body, "customer")
	assert.Contains(t, body["charge"], "on_hold_daily_limit")
}
