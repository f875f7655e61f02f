package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"nerdcon-demo/internal/provider"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateCustomer(ctx context.Context, req provider.CustomerRequest) (provider.Customer, error) {
	args := m.Called(ctx, req)
	var customer provider.Customer
	if val := args.Get(0); val != nil {
		customer = val.(provider.Customer)
	}
	return customer, args.Error(1)
}

func (m *ProviderMock) GetCustomer(ctx context.Context, id string) (provider.Customer, error) {
	args := m.Called(ctx, id)
	var customer provider.Customer
	if val := args.Get(0); val != nil {
		customer = val.(provider.Customer)
	}
	return customer, args.Error(1)
}

func (m *ProviderMock) GetCustomerReview(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) GetCustomerUnmasked(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) LinkBankAccount(ctx context.Context, req provider.BankAccountRequest) (provider.Paykey, error) {
	args := m.Called(ctx, req)
	var paykey provider.Paykey
	if val := args.Get(0); val != nil {
		paykey = val.(provider.Paykey)
	}
	return paykey, args.Error(1)
}

func (m *ProviderMock) GetPaykey(ctx context.Context, id string) (provider.Paykey, error) {
	args := m.Called(ctx, id)
	var paykey provider.Paykey
	if val := args.Get(0); val != nil {
		paykey = val.(provider.Paykey)
	}
	return paykey, args.Error(1)
}

func (m *ProviderMock) GetPaykeyReview(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) CancelPaykey(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) CreateCharge(ctx context.Context, req provider.ChargeRequest) (provider.Charge, error) {
	args := m.Called(ctx, req)
	var charge provider.Charge
	if val := args.Get(0); val != nil {
		charge = val.(provider.Charge)
	}
	return charge, args.Error(1)
}

func (m *ProviderMock) GetCharge(ctx context.Context, id string) (provider.Charge, error) {
	args := m.Called(ctx, id)
	var charge provider.Charge
	if val := args.Get(0); val != nil {
		charge = val.(provider.Charge)
	}
	return charge, args.Error(1)
}

func (m *ProviderMock) CancelCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) HoldCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) ReleaseCharge(ctx context.Context, id string) (json.RawMessage, error) {
	return m.raw(m.Called(ctx, id))
}

func (m *ProviderMock) raw(args mock.Arguments) (json.RawMessage, error) {
	var out json.RawMessage
	if val := args.Get(0); val != nil {
		switch v := val.(type) {
		case json.RawMessage:
			out = v
		case string:
			out = json.RawMessage(v)
		}
	}
	return out, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Broadcast(event string, payload any) {
	m.Called(event, payload)
}
