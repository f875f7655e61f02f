package handlers

import (
	"time"

	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/provider"
)

func customerFromProvider(p provider.Customer) models.Customer {
	out := models.Customer{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               p.Type,
		Email:              p.Email,
		Phone:              p.Phone,
		VerificationStatus: p.Status,
		RiskScore:          p.RiskScore,
		CreatedAt:          orNow(p.CreatedAt),
	}
	if p.Address != nil {
		out.Address = &models.Address{
			Address1: p.Address.Address1,
			Address2: p.Address.Address2,
			City:     p.Address.City,
			State:    p.Address.State,
			Zip:      p.Address.Zip,
		}
	}
	if p.ComplianceProfile != nil {
		out.ComplianceProfile = &models.ComplianceProfile{
			SSN: p.ComplianceProfile.SSN,
			DOB: p.ComplianceProfile.DOB,
		}
	}
	return out
}

func paykeyFromProvider(p provider.Paykey) models.Paykey {
	out := models.Paykey{
		ID:                p.ID,
		Paykey:            p.Paykey,
		CustomerID:        p.CustomerID,
		Status:            p.Status,
		OwnershipVerified: p.OwnershipVerified,
		AccountType:       p.AccountType,
		LinkedAt:          orNow(p.CreatedAt),
		InstitutionName:   p.InstitutionName,
		Label:             p.Label,
		Source:            p.Source,
	}
	switch {
	case p.Institution != nil:
		name := p.Institution.Name
		if name == "" {
			name = "Unknown"
		}
		out.Institution = &models.Institution{Name: name, Logo: p.Institution.Logo}
	case p.InstitutionName != "":
		out.Institution = &models.Institution{Name: p.InstitutionName}
	}
	if p.Balance != nil {
		available := p.Balance.Available
		if available == 0 {
			available = p.Balance.AccountBalance
		}
		currency := p.Balance.Currency
		if currency == "" {
			currency = "USD"
		}
		out.Balance = &models.Balance{Available: available, Currency: currency}
	}
	if out.AccountType == "" && p.BankData != nil {
		out.AccountType = p.BankData.AccountType
	}
	return out
}

func chargeFromProvider(p provider.Charge) models.Charge {
	out := models.Charge{
		ID:            p.ID,
		Paykey:        p.Paykey,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentDate:   p.PaymentDate,
		CreatedAt:     orNow(p.CreatedAt),
		ScheduledAt:   p.ScheduledAt,
		CompletedAt:   p.CompletedAt,
		FailureReason: p.FailureReason,
	}
	for _, h := range p.StatusHistory {
		out.StatusHistory = append(out.StatusHistory, models.StatusHistory{
			Status:    h.Status,
			Timestamp: h.Timestamp,
			Reason:    h.Reason,
			Message:   h.Message,
			Source:    h.Source,
		})
	}
	return out
}

func orNow(ts string) string {
	if ts != "" {
		return ts
	}
	return time.Now().UTC().Format(time.RFC3339Nano)
}
