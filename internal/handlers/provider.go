package handlers

import (
	"context"
	"encoding/json"

	"nerdcon-demo/internal/provider"
)

// Provider is the subset of the payment provider API the demo drives.
type Provider interface {
	CreateCustomer(ctx context.Context, req provider.CustomerRequest) (provider.Customer, error)
	GetCustomer(ctx context.Context, id string) (provider.Customer, error)
	GetCustomerReview(ctx context.Context, id string) (json.RawMessage, error)
	GetCustomerUnmasked(ctx context.Context, id string) (json.RawMessage, error)
	LinkBankAccount(ctx context.Context, req provider.BankAccountRequest) (provider.Paykey, error)
	GetPaykey(ctx context.Context, id string) (provider.Paykey, error)
	GetPaykeyReview(ctx context.Context, id string) (json.RawMessage, error)
	CancelPaykey(ctx context.Context, id string) (json.RawMessage, error)
	CreateCharge(ctx context.Context, req provider.ChargeRequest) (provider.Charge, error)
	GetCharge(ctx context.Context, id string) (provider.Charge, error)
	CancelCharge(ctx context.Context, id string) (json.RawMessage, error)
	HoldCharge(ctx context.Context, id string) (json.RawMessage, error)
	ReleaseCharge(ctx context.Context, id string) (json.RawMessage, error)
}

// Broadcaster pushes a named event to every live subscriber.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

var _ Provider = (*provider.Client)(nil)
