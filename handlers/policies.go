package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/ledger"
	"github.com/yourusername/insure-dao/models"
	"github.com/yourusername/insure-dao/utils"
)

func (h *LedgerHandler) ListPolicies(c *gin.Context) {
	policies, err := h.ledger.GetPolicies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}

func (h *LedgerHandler) CreatePolicy(c *gin.Context) {
	var draft models.PolicyDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.ledger.CreatePolicy(c.Request.Context(), draft)
	h.respondTx(c, http.StatusCreated, res, err)
}

func (h *LedgerHandler) Subscribe(c *gin.Context) {
	res, err := h.ledger.SubscribeToPolicy(c.Request.Context(), c.Param("id"))
	h.respondTx(c, http.StatusCreated, res, err)
}

// ListSubscriptions accepts an optional ?address= filter.
func (h *LedgerHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.ledger.GetSubscriptions(c.Request.Context(), c.Query("address"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *LedgerHandler) PayPremium(c *gin.Context) {
	res, err := h.ledger.PayPremium(c.Request.Context(), c.Param("id"))
	h.respondTx(c, http.StatusOK, res, err)
}

// PremiumEnvelope returns an unsigned Stellar payment of the policy premium
// from the subscriber to the pool account.
func (h *LedgerHandler) PremiumEnvelope(c *gin.Context) {
	ctx := c.Request.Context()
	sub, policy, err := h.ledger.Subscription(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	sender, _ := ledger.SenderFromContext(ctx)
	if sender != sub.Subscriber {
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription belongs to another wallet"})
		return
	}
	if h.config.PoolAccount == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Pool account not configured"})
		return
	}

	xdr, err := h.stellarClient.BuildPremiumTx(
		sub.Subscriber,
		h.config.PoolAccount,
		policy.Params.PremiumCurrency,
		"",
		policy.Params.PremiumAmount,
		sub.ID,
	)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to build Stellar transaction: " + err.Error()})
		return
	}

	amount, _ := utils.StroopsToAmount(policy.Params.PremiumAmount)
	c.JSON(http.StatusOK, gin.H{
		"subscription_id":    sub.ID,
		"tx_envelope":        xdr,
		"amount":             amount,
		"network_passphrase": h.config.NetworkPassphrase,
		"message":            "Sign and submit the envelope, then record the payment.",
	})
}
