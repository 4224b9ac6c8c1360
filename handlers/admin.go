package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/models"
)

func (h *LedgerHandler) AuditTrail(c *gin.Context) {
	trail, err := h.ledger.GetAuditTrail(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trail)
}

// AuditArchive serves archived events, ?actor= and ?limit= optional.
func (h *LedgerHandler) AuditArchive(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audit archive not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.archive.Recent(c.Request.Context(), c.Query("actor"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *LedgerHandler) Summary(c *gin.Context) {
	sum, err := h.ledger.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *LedgerHandler) GetToggles(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Toggles())
}

func (h *LedgerHandler) SetToggles(c *gin.Context) {
	var t models.Toggles
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.ledger.SetToggles(t)
	c.JSON(http.StatusOK, h.ledger.Toggles())
}

func (h *LedgerHandler) Reset(c *gin.Context) {
	if err := h.ledger.Reset(); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ledger reset to seed data"})
}
