package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/models"
)

func (h *LedgerHandler) ListProposals(c *gin.Context) {
	proposals, err := h.ledger.GetProposals(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

func (h *LedgerHandler) CreateProposal(c *gin.Context) {
	var draft models.ProposalDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.ProposeDaoChange(c.Request.Context(), draft)
	h.respondTx(c, http.StatusCreated, res, err)
}

func (h *LedgerHandler) VoteProposal(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.VoteProposal(c.Request.Context(), c.Param("id"), req.Vote)
	h.respondTx(c, http.StatusOK, res, err)
}

func (h *LedgerHandler) ResolveProposal(c *gin.Context) {
	res, err := h.ledger.ResolveProposal(c.Request.Context(), c.Param("id"))
	h.respondTx(c, http.StatusOK, res, err)
}
