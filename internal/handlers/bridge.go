package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"nerdcon-demo/internal/provider"
	"nerdcon-demo/internal/state"
)

// Sandbox bank account used when the request leaves the details out.
const (
	defaultAccountNumber = "123456789"
	defaultRoutingNumber = "021000021"
	defaultAccountType   = "checking"
)

// BridgeHandler links bank accounts into paykeys.
type BridgeHandler struct {
	provider Provider
	store    *state.Store
}

// NewBridgeHandler builds a BridgeHandler.
func NewBridgeHandler(p Provider, store *state.Store) *BridgeHandler {
	return &BridgeHandler{provider: p, store: store}
}

// LinkBankAccount links an account for a customer and makes the resulting
// paykey the tracked paykey.
func (h *BridgeHandler) LinkBankAccount(c *gin.Context) {
	var req struct {
		CustomerID    string `json:"customer_id"`
		AccountNumber string `json:"account_number"`
		RoutingNumber string `json:"routing_number"`
		AccountType   string `json:"account_type"`
		Outcome       string `json:"outcome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
		return
	}

	payload := provider.BankAccountRequest{
		CustomerID:    req.CustomerID,
		AccountNumber: orDefault(req.AccountNumber, defaultAccountNumber),
		RoutingNumber: orDefault(req.RoutingNumber, defaultRoutingNumber),
		AccountType:   orDefault(req.AccountType, defaultAccountType),
	}
	if req.Outcome != "" {
		payload.Config = &provider.SandboxConfig{SandboxOutcome: req.Outcome}
	}

	linked, err := h.provider.LinkBankAccount(c.Request.Context(), payload)
	if err != nil {
		respondProviderError(c, "link bank account", err)
		return
	}

	paykey := paykeyFromProvider(linked)
	if review, err := h.provider.GetPaykeyReview(c.Request.Context(), linked.ID); err != nil {
		log.Printf("paykey review %s unavailable: %v", linked.ID, err)
	} else {
		paykey.Review = review
	}

	h.store.SetPaykey(paykey)
	c.JSON(http.StatusCreated, paykey)
}
