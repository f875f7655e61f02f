package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/tracing"
)

const maxLoggedBody = 64 << 10

type endpointKey struct{}

func withEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

func endpointFrom(ctx context.Context) string {
	if v, ok := ctx.Value(endpointKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// Transport forwards the tracing identifiers of the originating request and
// records every provider call in the request log, the log stream and metrics.
type Transport struct {
	Base     http.RoundTripper
	Requests *logs.Store
	Stream   *logstream.Stream
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	tc, ok := tracing.FromContext(req.Context())
	if !ok {
		tc = tracing.Context{RequestID: tracing.NewID(), CorrelationID: tracing.NewID()}
	}
	endpoint := endpointFrom(req.Context())

	req = req.Clone(req.Context())
	tc.Apply(req.Header)
	outBody := readAndRestore(&req.Body)

	t.stream(logstream.Entry{
		Type:          logstream.TypeProviderRequest,
		Method:        req.Method,
		Path:          req.URL.Path,
		RequestBody:   decodeBody(outBody),
		RequestID:     tc.RequestID,
		CorrelationID: tc.CorrelationID,
	})

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		errBody, _ := logstream.ErrorBody(err)
		t.record(tc, endpoint, req, 0, elapsed, errBody)
		return nil, err
	}

	respBody := readAndRestore(&resp.Body)
	var logged any
	if resp.StatusCode >= 300 {
		logged, _ = logstream.ErrorBody(&APIError{StatusCode: resp.StatusCode, Body: respBody})
	} else {
		logged = decodeBody(respBody)
	}
	t.record(tc, endpoint, req, resp.StatusCode, elapsed, logged)
	return resp, nil
}

func (t *Transport) record(tc tracing.Context, endpoint string, req *http.Request, status int, elapsed time.Duration, body any) {
	observability.ObserveProviderCall(endpoint, status, elapsed)
	if t.Requests != nil {
		t.Requests.AddProviderCall(tc.RequestID, tc.CorrelationID, endpoint, req.Method, status, elapsed)
	}
	t.stream(logstream.Entry{
		Type:          logstream.TypeProviderResponse,
		Method:        req.Method,
		Path:          req.URL.Path,
		StatusCode:    status,
		ResponseBody:  body,
		Duration:      elapsed.Milliseconds(),
		RequestID:     tc.RequestID,
		CorrelationID: tc.CorrelationID,
	})
}

func (t *Transport) stream(e logstream.Entry) {
	if t.Stream != nil {
		t.Stream.Add(e)
	}
}

// readAndRestore returns a bounded copy of *body and leaves the full body readable.
func readAndRestore(body *io.ReadCloser) []byte {
	if body == nil || *body == nil || *body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(*body)
	_ = (*body).Close()
	*body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if len(data) > maxLoggedBody {
		return data[:maxLoggedBody]
	}
	return data
}

func decodeBody(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
