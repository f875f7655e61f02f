package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nerdcon-demo/internal/provider"
	"nerdcon-demo/internal/state"
)

const (
	defaultChargeAmount      = 10000
	defaultChargeCurrency    = "USD"
	defaultChargeDescription = "Demo charge payment"
)

// ChargeHandler creates charges and drives their lifecycle.
type ChargeHandler struct {
	provider Provider
	store    *state.Store
}

// NewChargeHandler builds a ChargeHandler.
func NewChargeHandler(p Provider, store *state.Store) *ChargeHandler {
	return &ChargeHandler{provider: p, store: store}
}

// CreateCharge creates a pay-by-bank charge and makes it the tracked charge.
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var req struct {
		Amount      int64  `json:"amount"`
		Paykey      string `json:"paykey"`
		Currency    string `json:"currency"`
		PaymentDate string `json:"payment_date"`
		Outcome     string `json:"outcome"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Paykey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paykey is required"})
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = defaultChargeAmount
	}
	payload := provider.ChargeRequest{
		Amount:      amount,
		Paykey:      req.Paykey,
		Currency:    orDefault(req.Currency, defaultChargeCurrency),
		ExternalID:  externalChargeID(),
		Description: orDefault(req.Description, defaultChargeDescription),
		ConsentType: "internet",
		Device:      provider.Device{IPAddress: deviceIP(c)},
		PaymentDate: orDefault(req.PaymentDate, time.Now().UTC().Format("2006-01-02")),
		Config: provider.SandboxConfig{
			BalanceCheck:   "enabled",
			SandboxOutcome: chargeOutcome(req.Outcome),
		},
	}

	created, err := h.provider.CreateCharge(c.Request.Context(), payload)
	if err != nil {
		respondProviderError(c, "create charge", err)
		return
	}

	charge := chargeFromProvider(created)
	charge.SandboxOutcome = req.Outcome
	h.store.SetCharge(charge)
	c.JSON(http.StatusCreated, charge)
}

// GetCharge returns a charge with its status history.
func (h *ChargeHandler) GetCharge(c *gin.Context) {
	found, err := h.provider.GetCharge(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, "get charge", err)
		return
	}
	c.JSON(http.StatusOK, chargeFromProvider(found))
}

func (h *ChargeHandler) CancelCharge(c *gin.Context) {
	h.action(c, "cancel charge", h.provider.CancelCharge)
}

func (h *ChargeHandler) HoldCharge(c *gin.Context) {
	h.action(c, "hold charge", h.provider.HoldCharge)
}

func (h *ChargeHandler) ReleaseCharge(c *gin.Context) {
	h.action(c, "release charge", h.provider.ReleaseCharge)
}

func (h *ChargeHandler) action(c *gin.Context, op string, call func(context.Context, string) (json.RawMessage, error)) {
	raw, err := call(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, op, err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

// chargeOutcome maps the short "failed" outcome to the provider's name.
func chargeOutcome(outcome string) string {
	switch outcome {
	case "":
		return "paid"
	case "failed":
		return "failed_insufficient_funds"
	default:
		return outcome
	}
}

func externalChargeID() string {
	return fmt.Sprintf("charge_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
