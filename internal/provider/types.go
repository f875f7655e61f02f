package provider

import "encoding/json"

// Device describes the end-user device for risk scoring.
type Device struct {
	IPAddress string `json:"ip_address"`
}

// SandboxConfig forces the outcome of a sandbox request.
type SandboxConfig struct {
	SandboxOutcome string `json:"sandbox_outcome,omitempty"`
	BalanceCheck   string `json:"balance_check,omitempty"`
}

type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

type ComplianceProfile struct {
	SSN string `json:"ssn,omitempty"`
	DOB string `json:"dob,omitempty"`
}

// CustomerRequest creates a customer.
type CustomerRequest struct {
	Name              string             `json:"name"`
	Type              string             `json:"type"`
	Email             string             `json:"email,omitempty"`
	Phone             string             `json:"phone,omitempty"`
	Device            Device             `json:"device"`
	Address           *Address           `json:"address,omitempty"`
	ComplianceProfile *ComplianceProfile `json:"compliance_profile,omitempty"`
	ExternalID        string             `json:"external_id,omitempty"`
	Config            *SandboxConfig     `json:"config,omitempty"`
}

type Customer struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Type              string             `json:"type"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Status            string             `json:"status"`
	RiskScore         *float64           `json:"risk_score,omitempty"`
	CreatedAt         string             `json:"created_at"`
	Address           *Address           `json:"address,omitempty"`
	ComplianceProfile *ComplianceProfile `json:"compliance_profile,omitempty"`
}

// BankAccountRequest links a bank account by routing and account number.
type BankAccountRequest struct {
	CustomerID    string         `json:"customer_id"`
	AccountNumber string         `json:"account_number"`
	RoutingNumber string         `json:"routing_number"`
	AccountType   string         `json:"account_type"`
	Config        *SandboxConfig `json:"config,omitempty"`
}

type Institution struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Balance is reported as available/currency on reads and as account_balance
// right after linking.
type Balance struct {
	Available      int64  `json:"available,omitempty"`
	Currency       string `json:"currency,omitempty"`
	AccountBalance int64  `json:"account_balance,omitempty"`
	Status         string `json:"status,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

type BankData struct {
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	RoutingNumber string `json:"routing_number"`
}

type Paykey struct {
	ID                string       `json:"id"`
	Paykey            string       `json:"paykey"`
	CustomerID        string       `json:"customer_id"`
	Status            string       `json:"status"`
	Institution       *Institution `json:"institution,omitempty"`
	InstitutionName   string       `json:"institution_name,omitempty"`
	Label             string       `json:"label,omitempty"`
	Source            string       `json:"source,omitempty"`
	BankData          *BankData    `json:"bank_data,omitempty"`
	OwnershipVerified bool         `json:"ownership_verified"`
	Balance           *Balance     `json:"balance,omitempty"`
	AccountType       string       `json:"account_type,omitempty"`
	CreatedAt         string       `json:"created_at"`
}

// ChargeRequest creates a pay-by-bank charge.
type ChargeRequest struct {
	Amount      int64         `json:"amount"`
	Paykey      string        `json:"paykey"`
	Currency    string        `json:"currency"`
	ExternalID  string        `json:"external_id"`
	Description string        `json:"description"`
	ConsentType string        `json:"consent_type"`
	Device      Device        `json:"device"`
	PaymentDate string        `json:"payment_date"`
	Config      SandboxConfig `json:"config"`
}

type StatusHistory struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
}

type Charge struct {
	ID            string          `json:"id"`
	Paykey        string          `json:"paykey"`
	Amount        int64           `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentDate   string          `json:"payment_date"`
	CreatedAt     string          `json:"created_at"`
	ScheduledAt   string          `json:"scheduled_at,omitempty"`
	CompletedAt   string          `json:"completed_at,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	StatusHistory []StatusHistory `json:"status_history,omitempty"`
}

// envelope is the wrapper every provider response uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}
