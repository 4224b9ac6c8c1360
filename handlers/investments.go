package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DepositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (h *LedgerHandler) PoolStats(c *gin.Context) {
	pool, err := h.ledger.GetPoolStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (h *LedgerHandler) ListDeposits(c *gin.Context) {
	deposits, err := h.ledger.GetDeposits(c.Request.Context(), c.Query("address"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.DepositInvestment(c.Request.Context(), req.Amount)
	h.respondTx(c, http.StatusCreated, res, err)
}

func (h *LedgerHandler) Withdraw(c *gin.Context) {
	res, err := h.ledger.WithdrawInvestment(c.Request.Context(), c.Param("id"))
	h.respondTx(c, http.StatusOK, res, err)
}
