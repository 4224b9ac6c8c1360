package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/insure-dao/blobstore"
	"github.com/yourusername/insure-dao/config"
	"github.com/yourusername/insure-dao/ledger"
	"github.com/yourusername/insure-dao/models"
	"github.com/yourusername/insure-dao/utils"
	"go.uber.org/zap"
)

// AuditArchive reads back events archived outside the ledger.
type AuditArchive interface {
	Recent(ctx context.Context, actor string, limit int) ([]models.AuditEvent, error)
}

type LedgerHandler struct {
	ledger        *ledger.Service
	config        *config.Config
	stellarClient utils.StellarClientInterface
	uploads       *blobstore.MemoryStore
	archive       AuditArchive
	log           *zap.Logger
}

// NewLedgerHandler wires the ledger to HTTP. uploads and archive may be nil
// when evidence goes to S3 or no database is configured.
func NewLedgerHandler(svc *ledger.Service, cfg *config.Config, uploads *blobstore.MemoryStore, archive AuditArchive, log *zap.Logger) *LedgerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerHandler{
		ledger:        svc,
		config:        cfg,
		stellarClient: utils.NewStellarClient(cfg.HorizonURL, cfg.NetworkPassphrase),
		uploads:       uploads,
		archive:       archive,
		log:           log,
	}
}

// statusFor maps a rejected result to an HTTP status.
func statusFor(ctx context.Context, res models.TxResult) int {
	switch res.Code {
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeUnauthorized:
		if _, ok := ledger.SenderFromContext(ctx); !ok {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case models.CodePolicyViolation:
		return http.StatusUnprocessableEntity
	case models.CodeSimulatedFailure:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondTx writes the result of a ledger write. successStatus is used when
// the transaction was applied.
func (h *LedgerHandler) respondTx(c *gin.Context, successStatus int, res models.TxResult, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !res.OK {
		c.JSON(statusFor(c.Request.Context(), res), res)
		return
	}
	c.JSON(successStatus, res)
}

func (h *LedgerHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNetwork):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Network error, please retry"})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request cancelled"})
	default:
		h.log.Error("ledger request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
