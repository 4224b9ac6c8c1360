package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stellar/go/keypair"
	"github.com/yourusername/insure-dao/config"
	"github.com/yourusername/insure-dao/ledger"
	"github.com/yourusername/insure-dao/middleware"
	"github.com/yourusername/insure-dao/utils"
)

const ChallengeTTL = 5 * time.Minute

type challenge struct {
	message string
	expires time.Time
}

// AuthHandler runs the wallet login: the client requests a challenge for
// its address, signs it with the wallet key and exchanges the signature for
// a session token.
type AuthHandler struct {
	ledger        *ledger.Service
	Cfg           *config.Config
	stellarClient utils.StellarClientInterface

	mu         sync.Mutex
	challenges map[string]challenge
	now        func() time.Time
}

func NewAuthHandler(svc *ledger.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		ledger:        svc,
		Cfg:           cfg,
		stellarClient: utils.NewStellarClient(cfg.HorizonURL, cfg.NetworkPassphrase),
		challenges:    make(map[string]challenge),
		now:           time.Now,
	}
}

type ChallengeRequest struct {
	Address string `json:"address" binding:"required"`
}

type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Challenge issues a one-time message for the wallet to sign.
func (h *AuthHandler) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := keypair.ParseAddress(req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Stellar address"})
		return
	}
	if h.Cfg.VerifyAccounts {
		if err := h.stellarClient.ValidateAccount(req.Address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Account not found on network"})
			return
		}
	}

	now := h.now()
	ch := challenge{
		message: "insure-dao login " + uuid.NewString(),
		expires: now.Add(ChallengeTTL),
	}

	h.mu.Lock()
	for addr, existing := range h.challenges {
		if now.After(existing.expires) {
			delete(h.challenges, addr)
		}
	}
	h.challenges[req.Address] = ch
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"address":    req.Address,
		"challenge":  ch.message,
		"expires_at": ch.expires,
	})
}

// Login verifies the signed challenge and returns a bearer token. Each
// challenge can be used once.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	ch, ok := h.challenges[req.Address]
	if ok {
		delete(h.challenges, req.Address)
	}
	h.mu.Unlock()

	if !ok || h.now().After(ch.expires) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active challenge for address", "code": "InvalidChallenge"})
		return
	}

	if err := utils.VerifySignature(req.Address, ch.message, req.Signature); err != nil {
		code := "InvalidSignature"
		if !errors.Is(err, utils.ErrBadSignature) {
			code = "MalformedSignature"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature verification failed", "code": code})
		return
	}

	role := middleware.RoleMember
	if h.ledger.IsDaoMember(req.Address) {
		role = middleware.RoleDAO
	}

	token, err := middleware.GenerateToken(req.Address, role, h.Cfg.JWTSecret, h.Cfg.JWTExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"address":      req.Address,
		"role":         role,
		"expires_in":   int(h.Cfg.JWTExpiry.Seconds()),
	})
}
