package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/provider"
	"nerdcon-demo/internal/state"
)

const (
	defaultCustomerName  = "Alberta Bobbeth Charleson"
	defaultCustomerPhone = "+12125550123"
	defaultDeviceIP      = "192.168.1.1"
)

// CustomerHandler creates and fetches provider customers.
type CustomerHandler struct {
	provider Provider
	store    *state.Store
}

// NewCustomerHandler builds a CustomerHandler.
func NewCustomerHandler(p Provider, store *state.Store) *CustomerHandler {
	return &CustomerHandler{provider: p, store: store}
}

type createCustomerRequest struct {
	Name      string            `json:"name"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Type      string            `json:"type"`
	Outcome   string            `json:"outcome"`
	Address   *provider.Address `json:"address"`
	// ComplianceProfile is either the string "kyc" or an object with ssn and dob.
	ComplianceProfile json.RawMessage `json:"compliance_profile"`
}

// CreateCustomer creates a sandbox customer and makes it the tracked customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := req.toProvider(deviceIP(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.provider.CreateCustomer(c.Request.Context(), payload)
	if err != nil {
		respondProviderError(c, "create customer", err)
		return
	}

	customer := customerFromProvider(created)
	if review, err := h.provider.GetCustomerReview(c.Request.Context(), created.ID); err != nil {
		log.Printf("customer review %s unavailable: %v", created.ID, err)
	} else {
		customer.Review = review
	}

	h.store.SetCustomer(customer)
	c.JSON(http.StatusCreated, customer)
}

// GetCustomer returns a customer without touching the tracked state.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	found, err := h.provider.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, "get customer", err)
		return
	}
	c.JSON(http.StatusOK, customerFromProvider(found))
}

// GetUnmasked returns the customer with unmasked compliance fields.
func (h *CustomerHandler) GetUnmasked(c *gin.Context) {
	raw, err := h.provider.GetCustomerUnmasked(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, "unmask customer", err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

func (r createCustomerRequest) toProvider(ip string) (provider.CustomerRequest, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(r.FirstName + " " + r.LastName)
	}
	if name == "" {
		name = defaultCustomerName
	}
	email := r.Email
	if email == "" {
		email = fmt.Sprintf("customer.%d@example.com", time.Now().UnixMilli())
	}
	out := provider.CustomerRequest{
		Name:    name,
		Type:    orDefault(r.Type, "individual"),
		Email:   email,
		Phone:   orDefault(r.Phone, defaultCustomerPhone),
		Device:  provider.Device{IPAddress: ip},
		Address: r.Address,
		Config:  &provider.SandboxConfig{SandboxOutcome: orDefault(r.Outcome, "standard")},
	}

	kyc := false
	if len(r.ComplianceProfile) > 0 && string(r.ComplianceProfile) != "null" {
		var mode string
		if err := json.Unmarshal(r.ComplianceProfile, &mode); err == nil {
			kyc = mode == "kyc"
		} else {
			var profile provider.ComplianceProfile
			if err := json.Unmarshal(r.ComplianceProfile, &profile); err != nil {
				return provider.CustomerRequest{}, errors.New(`Validation failed: compliance_profile must be "kyc" or an object`)
			}
			out.ComplianceProfile = &profile
			kyc = true
		}
	}
	if kyc {
		if problems := missingAddressFields(r.Address); len(problems) > 0 {
			return provider.CustomerRequest{}, fmt.Errorf("Validation failed: %s", strings.Join(problems, ", "))
		}
	}
	return out, nil
}

func missingAddressFields(a *provider.Address) []string {
	if a == nil {
		return []string{"address is required"}
	}
	var problems []string
	for _, f := range []struct{ name, value string }{
		{"address.address1", a.Address1},
		{"address.city", a.City},
		{"address.state", a.State},
		{"address.zip", a.Zip},
	} {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	return problems
}

func deviceIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return defaultDeviceIP
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
