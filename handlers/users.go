package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *LedgerHandler) GetUser(c *gin.Context) {
	user, err := h.ledger.GetUser(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type AdjustCreditRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *LedgerHandler) AdjustCredit(c *gin.Context) {
	var req AdjustCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	addr := c.Param("address")
	if err := h.ledger.AdjustCredit(ctx, addr, req.Delta); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.ledger.GetUser(ctx, addr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
