package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/models"
)

type VoteRequest struct {
	Vote models.Vote `json:"vote" binding:"required,oneof=yes no"`
}

func (h *LedgerHandler) ListClaims(c *gin.Context) {
	claims, err := h.ledger.GetClaims(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

func (h *LedgerHandler) SubmitClaim(c *gin.Context) {
	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.SubmitClaim(c.Request.Context(), req)
	h.respondTx(c, http.StatusCreated, res, err)
}

func (h *LedgerHandler) VoteClaim(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.VoteClaim(c.Request.Context(), c.Param("id"), req.Vote)
	h.respondTx(c, http.StatusOK, res, err)
}

func (h *LedgerHandler) ExecutePayout(c *gin.Context) {
	res, err := h.ledger.ExecutePayout(c.Request.Context(), c.Param("id"))
	h.respondTx(c, http.StatusOK, res, err)
}
