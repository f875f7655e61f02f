package models

import "encoding/json"

// Paykey is a tokenized bank account link usable for charges.
type Paykey struct {
	ID string `json:"id"`
	// Paykey is the token passed to charge creation.
	Paykey            string       `json:"paykey"`
	CustomerID        string       `json:"customer_id"`
	Status            string       `json:"status"`
	Institution       *Institution `json:"institution,omitempty"`
	OwnershipVerified bool         `json:"ownership_verified"`
	Balance           *Balance     `json:"balance,omitempty"`
	AccountType       string       `json:"account_type,omitempty"`
	LinkedAt          string       `json:"linked_at"`
	InstitutionName   string       `json:"institution_name,omitempty"`
	Label             string       `json:"label,omitempty"`
	Source            string       `json:"source,omitempty"`
	// Review is the verification breakdown exactly as the provider returns it.
	Review json.RawMessage `json:"review,omitempty"`
}

// Institution identifies the bank behind a paykey.
type Institution struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Balance is the last known account balance in minor units.
type Balance struct {
	Available int64  `json:"available"`
	Currency  string `json:"currency"`
}

// Clone returns a deep copy of the paykey.
func (p *Paykey) Clone() *Paykey {
	if p == nil {
		return nil
	}
	out := *p
	if p.Institution != nil {
		inst := *p.Institution
		out.Institution = &inst
	}
	if p.Balance != nil {
		bal := *p.Balance
		out.Balance = &bal
	}
	out.Review = cloneRaw(p.Review)
	return &out
}
