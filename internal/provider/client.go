// Package provider is a small client for the payment provider's REST API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
)

// Base URLs per provider environment.
const (
	SandboxURL    = "https://sandbox.straddle.io"
	ProductionURL = "https://production.straddle.io"
)

const defaultTimeout = 30 * time.Second

var tracer = otel.Tracer("nerdcon-demo/provider")

// Config configures a Client.
type Config struct {
	APIKey      string
	Environment string
	// BaseURL overrides the URL derived from Environment.
	BaseURL string
	Timeout time.Duration
}

// Client calls the provider API. Every call is logged through Transport.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client that records its calls in requests and stream.
func NewClient(cfg Config, requests *logs.Store, stream *logstream.Stream) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = SandboxURL
		if cfg.Environment == "production" {
			baseURL = ProductionURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &Transport{Base: http.DefaultTransport, Requests: requests, Stream: stream},
		},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (Customer, error) {
	var out Customer
	err := c.do(ctx, "customers.create", http.MethodPost, "/v1/customers", req, &out)
	return out, err
}

func (c *Client) GetCustomer(ctx context.Context, id string) (Customer, error) {
	var out Customer
	err := c.do(ctx, "customers.get", http.MethodGet, "/v1/customers/"+url.PathEscape(id), nil, &out)
	return out, err
}

// GetCustomerReview returns the identity review breakdown as provided.
func (c *Client) GetCustomerReview(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, "customers.review", http.MethodGet, "/v1/customers/"+url.PathEscape(id)+"/review", nil, &out)
	return out, err
}

// GetCustomerUnmasked returns the customer with unmasked compliance fields.
func (c *Client) GetCustomerUnmasked(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, "customers.unmasked", http.MethodGet, "/v1/customers/"+url.PathEscape(id)+"/unmasked", nil, &out)
	return out, err
}

func (c *Client) LinkBankAccount(ctx context.Context, req BankAccountRequest) (Paykey, error) {
	var out Paykey
	err := c.do(ctx, "bridge.link.bank_account", http.MethodPost, "/v1/bridge/bank_account", req, &out)
	return out, err
}

func (c *Client) GetPaykey(ctx context.Context, id string) (Paykey, error) {
	var out Paykey
	err := c.do(ctx, "paykeys.get", http.MethodGet, "/v1/paykeys/"+url.PathEscape(id), nil, &out)
	return out, err
}

// GetPaykeyReview returns the verification breakdown of a paykey.
func (c *Client) GetPaykeyReview(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, "paykeys.review", http.MethodGet, "/v1/paykeys/"+url.PathEscape(id)+"/review", nil, &out)
	return out, err
}

func (c *Client) CancelPaykey(ctx context.Context, id string) (json.RawMessage, error) {
	return c.action(ctx, "paykeys.cancel", "/v1/paykeys/"+url.PathEscape(id)+"/cancel")
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (Charge, error) {
	var out Charge
	err := c.do(ctx, "charges.create", http.MethodPost, "/v1/charges", req, &out)
	return out, err
}

func (c *Client) GetCharge(ctx context.Context, id string) (Charge, error) {
	var out Charge
	err := c.do(ctx, "charges.get", http.MethodGet, "/v1/charges/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) CancelCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return c.action(ctx, "charges.cancel", "/v1/charges/"+url.PathEscape(id)+"/cancel")
}

func (c *Client) HoldCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return c.action(ctx, "charges.hold", "/v1/charges/"+url.PathEscape(id)+"/hold")
}

func (c *Client) ReleaseCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return c.action(ctx, "charges.release", "/v1/charges/"+url.PathEscape(id)+"/release")
}

func (c *Client) action(ctx context.Context, endpoint, path string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, endpoint, http.MethodPut, path, struct{}{}, &out)
	return out, err
}

// do sends one request and decodes the data field of the response into out.
// Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) (err error) {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	ctx, span := tracer.Start(withEndpoint(ctx, endpoint), "provider."+endpoint)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("provider.endpoint", endpoint),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil || len(data) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	return nil
}
