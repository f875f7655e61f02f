package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PaykeyHandler reads and cancels paykeys.
type PaykeyHandler struct {
	provider Provider
}

// NewPaykeyHandler builds a PaykeyHandler.
func NewPaykeyHandler(p Provider) *PaykeyHandler {
	return &PaykeyHandler{provider: p}
}

func (h *PaykeyHandler) GetPaykey(c *gin.Context) {
	found, err := h.provider.GetPaykey(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, "get paykey", err)
		return
	}
	c.JSON(http.StatusOK, paykeyFromProvider(found))
}

func (h *PaykeyHandler) CancelPaykey(c *gin.Context) {
	raw, err := h.provider.CancelPaykey(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProviderError(c, "cancel paykey", err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}
