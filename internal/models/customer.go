package models

import "encoding/json"

// Customer is the demo view of a provider customer.
type Customer struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	Email              string             `json:"email,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	VerificationStatus string             `json:"verification_status,omitempty"`
	RiskScore          *float64           `json:"risk_score,omitempty"`
	CreatedAt          string             `json:"created_at"`
	Address            *Address           `json:"address,omitempty"`
	ComplianceProfile  *ComplianceProfile `json:"compliance_profile,omitempty"`
	// Review is the identity review breakdown exactly as the provider returns it.
	Review json.RawMessage `json:"review,omitempty"`
}

// Address is a postal address attached to a customer.
type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// ComplianceProfile holds masked identity fields.
type ComplianceProfile struct {
	SSN string `json:"ssn,omitempty"`
	DOB string `json:"dob,omitempty"`
}

// CustomerPatch is a partial customer update. Nil fields are left untouched.
type CustomerPatch struct {
	Name               *string         `json:"name,omitempty"`
	Email              *string         `json:"email,omitempty"`
	Phone              *string         `json:"phone,omitempty"`
	VerificationStatus *string         `json:"verification_status,omitempty"`
	RiskScore          *float64        `json:"risk_score,omitempty"`
	Review             json.RawMessage `json:"review,omitempty"`
}

// Clone returns a deep copy of the customer.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	out := *c
	if c.RiskScore != nil {
		score := *c.RiskScore
		out.RiskScore = &score
	}
	if c.Address != nil {
		addr := *c.Address
		out.Address = &addr
	}
	if c.ComplianceProfile != nil {
		profile := *c.ComplianceProfile
		out.ComplianceProfile = &profile
	}
	out.Review = cloneRaw(c.Review)
	return &out
}

// Apply merges the patch onto the customer field by field.
func (c *Customer) Apply(p CustomerPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.VerificationStatus != nil {
		c.VerificationStatus = *p.VerificationStatus
	}
	if p.RiskScore != nil {
		score := *p.RiskScore
		c.RiskScore = &score
	}
	if p.Review != nil {
		c.Review = cloneRaw(p.Review)
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
