package models

// Charge is a pay-by-bank payment.
type Charge struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer_id,omitempty"`
	Paykey         string          `json:"paykey"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	PaymentDate    string          `json:"payment_date"`
	CreatedAt      string          `json:"created_at"`
	ScheduledAt    string          `json:"scheduled_at,omitempty"`
	CompletedAt    string          `json:"completed_at,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	StatusHistory  []StatusHistory `json:"status_history,omitempty"`
	SandboxOutcome string          `json:"sandbox_outcome,omitempty"`
}

// StatusHistory is one transition in a charge lifecycle.
type StatusHistory struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ChargePatch is a partial charge update. Nil fields are left untouched.
type ChargePatch struct {
	Status        *string         `json:"status,omitempty"`
	CompletedAt   *string         `json:"completed_at,omitempty"`
	FailureReason *string         `json:"failure_reason,omitempty"`
	StatusHistory []StatusHistory `json:"status_history,omitempty"`
}

// Clone returns a deep copy of the charge.
func (c *Charge) Clone() *Charge {
	if c == nil {
		return nil
	}
	out := *c
	if c.StatusHistory != nil {
		out.StatusHistory = append([]StatusHistory(nil), c.StatusHistory...)
	}
	return &out
}

// Apply merges the patch onto the charge field by field.
func (c *Charge) Apply(p ChargePatch) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CompletedAt != nil {
		c.CompletedAt = *p.CompletedAt
	}
	if p.FailureReason != nil {
		c.FailureReason = *p.FailureReason
	}
	if p.StatusHistory != nil {
		c.StatusHistory = append([]StatusHistory(nil), p.StatusHistory...)
	}
}
