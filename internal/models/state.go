package models

import "encoding/json"

// State is the snapshot of the three tracked demo entities. A nil slot is empty.
type State struct {
	Customer *Customer `json:"customer"`
	Paykey   *Paykey   `json:"paykey"`
	Charge   *Charge   `json:"charge"`
}

// Clone returns a deep copy of the snapshot.
func (s State) Clone() State {
	return State{
		Customer: s.Customer.Clone(),
		Paykey:   s.Paykey.Clone(),
		Charge:   s.Charge.Clone(),
	}
}

// WebhookEvent is the envelope the provider posts to the webhook endpoint.
type WebhookEvent struct {
	EventType string          `json:"event_type"`
	EventID   string          `json:"event_id"`
	AccountID string          `json:"account_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// WebhookData is the subset of webhook resource fields used to update state.
type WebhookData struct {
	ID            string   `json:"id"`
	Status        *string  `json:"status,omitempty"`
	RiskScore     *float64 `json:"risk_score,omitempty"`
	CompletedAt   *string  `json:"completed_at,omitempty"`
	FailureReason *string  `json:"failure_reason,omitempty"`
}

// Outcomes lists the sandbox outcomes the provider accepts per resource.
var Outcomes = map[string][]string{
	"customer": {"verified", "review", "rejected"},
	"paykey":   {"active", "inactive", "rejected"},
	"charge": {
		"paid",
		"failed",
		"reversed_insufficient_funds",
		"on_hold_daily_limit",
		"cancelled_for_fraud_risk",
	},
}
