package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/insure-dao/blobstore"
	"github.com/yourusername/insure-dao/config"
	"github.com/yourusername/insure-dao/ledger"
	"github.com/yourusername/insure-dao/models"
	"go.uber.org/zap"
)

const (
	daoMember  = "GCYK...KLMN"
	subscriber = "GABC...WXYZ"
)

type MockStellarClient struct {
	ValidateAccountFunc func(accountID string) error
	BuildPremiumTxFunc  func(subscriber, poolAccount, assetCode, issuer, stroops, memo string) (string, error)
}

func (m *MockStellarClient) ValidateAccount(accountID string) error {
	return m.ValidateAccountFunc(accountID)
}

func (m *MockStellarClient) BuildPremiumTx(subscriber, poolAccount, assetCode, issuer, stroops, memo string) (string, error) {
	return m.BuildPremiumTxFunc(subscriber, poolAccount, assetCode, issuer, stroops, memo)
}

type fakeArchive struct {
	events []models.AuditEvent
	actor  string
	limit  int
}

func (f *fakeArchive) Recent(_ context.Context, actor string, limit int) ([]models.AuditEvent, error) {
	f.actor, f.limit = actor, limit
	return f.events, nil
}

func setupTestLedger(t *testing.T, mutate ...func(*ledger.Options)) *ledger.Service {
	t.Helper()
	opts := ledger.Options{
		Chance: func(float64) bool { return false },
		Sleep:  func(context.Context, time.Duration) error { return nil },
	}
	for _, m := range mutate {
		m(&opts)
	}
	svc, err := ledger.New(opts)
	require.NoError(t, err)
	return svc
}

func setupTestHandler(t *testing.T, svc *ledger.Service) *LedgerHandler {
	t.Helper()
	return &LedgerHandler{
		ledger: svc,
		config: &config.Config{NetworkPassphrase: "Test SDF Network ; September 2015"},
		stellarClient: &MockStellarClient{
			ValidateAccountFunc: func(accountID string) error { return nil },
			BuildPremiumTxFunc: func(subscriber, poolAccount, assetCode, issuer, stroops, memo string) (string, error) {
				return "base64_xdr", nil
			},
		},
		log: zap.NewNop(),
	}
}

// newTestRouter stands in for the JWT middleware: X-Test-Address becomes the
// connected wallet.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if addr := c.GetHeader("X-Test-Address"); addr != "" {
			c.Set("address", addr)
			c.Request = c.Request.WithContext(ledger.WithSender(c.Request.Context(), addr))
		}
		c.Next()
	})
	return router
}

func doJSON(router *gin.Engine, method, path, sender string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sender != "" {
		req.Header.Set("X-Test-Address", sender)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.TxResult {
	t.Helper()
	var res models.TxResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestListEndpoints(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.GET("/policies", handler.ListPolicies)
	router.GET("/claims", handler.ListClaims)
	router.GET("/proposals", handler.ListProposals)
	router.GET("/subscriptions", handler.ListSubscriptions)
	router.GET("/deposits", handler.ListDeposits)
	router.GET("/audit", handler.AuditTrail)

	tests := []struct {
		path string
		want int
	}{
		{"/policies", 8},
		{"/claims", 6},
		{"/proposals", 6},
		{"/subscriptions", 7},
		{"/subscriptions?address=" + subscriber, 2},
		{"/deposits", 9},
		{"/deposits?address=GDEF...OPQR", 2},
		{"/audit", 5},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doJSON(router, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, http.StatusOK, w.Code)

			var items []map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
			assert.Len(t, items, tt.want)
		})
	}
}

func TestGetUserAndCredit(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.GET("/users/:address", handler.GetUser)
	router.POST("/users/:address/credit", handler.AdjustCredit)

	w := doJSON(router, http.MethodGet, "/users/GNEW...0000", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Guest"`)

	w = doJSON(router, http.MethodPost, "/users/"+daoMember+"/credit", daoMember, AdjustCreditRequest{Delta: 500})
	assert.Equal(t, http.StatusOK, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, models.MaxCreditScore, user.CreditScore)

	w = doJSON(router, http.MethodPost, "/users/"+daoMember+"/credit", daoMember, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePolicyAndSubscribe(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.POST("/policies", handler.CreatePolicy)
	router.POST("/policies/:id/subscribe", handler.Subscribe)

	t.Run("Valid Request", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/policies", daoMember, models.PolicyDraft{Title: "Flood", Description: "River flooding"})
		assert.Equal(t, http.StatusCreated, w.Code)
		res := decodeResult(t, w)
		assert.True(t, res.OK)
		assert.Equal(t, "pol-9", res.ID)
		assert.NotEmpty(t, res.TxID)
	})

	t.Run("Missing Title", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/policies", daoMember, map[string]string{"description": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tests := []struct {
		name     string
		path     string
		sender   string
		status   int
		wantCode models.ErrorCode
	}{
		{"no wallet", "/policies/pol-1/subscribe", "", http.StatusUnauthorized, models.CodeUnauthorized},
		{"inactive policy", "/policies/pol-2/subscribe", subscriber, http.StatusUnprocessableEntity, models.CodePolicyViolation},
		{"unknown policy", "/policies/pol-404/subscribe", subscriber, http.StatusNotFound, models.CodeNotFound},
		{"active policy", "/policies/pol-1/subscribe", subscriber, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, tt.path, tt.sender, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantCode, decodeResult(t, w).Code)
		})
	}
}

func TestClaimFlow(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.POST("/claims", handler.SubmitClaim)
	router.POST("/claims/:id/vote", handler.VoteClaim)
	router.POST("/claims/:id/payout", handler.ExecutePayout)

	w := doJSON(router, http.MethodPost, "/claims", subscriber, models.ClaimRequest{SubscriptionID: "sub-1", Amount: "100"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeResult(t, w).Error, "Cooldown active until")

	w = doJSON(router, http.MethodPost, "/claims/clm-1/vote", subscriber, VoteRequest{Vote: models.VoteYes})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not a DAO member", decodeResult(t, w).Error)

	w = doJSON(router, http.MethodPost, "/claims/clm-1/vote", daoMember, map[string]string{"vote": "abstain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/claims/clm-1/vote", daoMember, VoteRequest{Vote: models.VoteYes})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/claims/clm-1/payout", daoMember, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/claims/clm-1/payout", daoMember, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Claim already finalized", decodeResult(t, w).Error)
}

func TestProposalFlow(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.POST("/proposals", handler.CreateProposal)
	router.POST("/proposals/:id/vote", handler.VoteProposal)
	router.POST("/proposals/:id/resolve", handler.ResolveProposal)

	w := doJSON(router, http.MethodPost, "/proposals", subscriber, models.ProposalDraft{Kind: models.KindPoolConfig, Title: "Raise yield"})
	assert.Equal(t, http.StatusCreated, w.Code)
	id := decodeResult(t, w).ID
	assert.Equal(t, "prp-7", id)

	w = doJSON(router, http.MethodPost, "/proposals/"+id+"/vote", daoMember, VoteRequest{Vote: models.VoteNo})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/proposals/"+id+"/resolve", daoMember, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/proposals/"+id+"/resolve", daoMember, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Proposal already resolved", decodeResult(t, w).Error)
}

func TestDepositAndToggles(t *testing.T) {
	svc := setupTestLedger(t)
	handler := setupTestHandler(t, svc)
	router := newTestRouter()
	router.GET("/pool", handler.PoolStats)
	router.POST("/deposits", handler.Deposit)
	router.POST("/deposits/:id/withdraw", handler.Withdraw)
	router.GET("/toggles", handler.GetToggles)
	router.PUT("/toggles", handler.SetToggles)
	router.POST("/reset", handler.Reset)
	router.GET("/summary", handler.Summary)

	w := doJSON(router, http.MethodPut, "/toggles", daoMember, models.Toggles{FailNextTx: true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fail_next_tx":true`)

	w = doJSON(router, http.MethodPost, "/deposits", daoMember, DepositRequest{Amount: "1000"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, models.CodeSimulatedFailure, decodeResult(t, w).Code)

	w = doJSON(router, http.MethodGet, "/toggles", "", nil)
	assert.Contains(t, w.Body.String(), `"fail_next_tx":false`)

	w = doJSON(router, http.MethodPost, "/deposits", daoMember, DepositRequest{Amount: "1000"})
	assert.Equal(t, http.StatusCreated, w.Code)
	depID := decodeResult(t, w).ID

	w = doJSON(router, http.MethodPost, "/deposits/"+depID+"/withdraw", daoMember, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Lock-in active", decodeResult(t, w).Error)

	w = doJSON(router, http.MethodGet, "/pool", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_pool":"100000001000"`)

	w = doJSON(router, http.MethodPost, "/reset", daoMember, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/summary", "", nil)
	var sum models.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 9, sum.Deposits)
}

func TestFlakyNetworkRead(t *testing.T) {
	svc := setupTestLedger(t, func(o *ledger.Options) {
		o.Chance = func(float64) bool { return true }
		o.Toggles = models.Toggles{NetworkFlaky: true}
	})
	handler := setupTestHandler(t, svc)
	router := newTestRouter()
	router.GET("/policies", handler.ListPolicies)

	w := doJSON(router, http.MethodGet, "/policies", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Network error")
}

func TestPremiumEnvelope(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.GET("/subscriptions/:id/premium-envelope", handler.PremiumEnvelope)

	t.Run("Pool Not Configured", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/subscriptions/sub-1/premium-envelope", subscriber, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	handler.config.PoolAccount = "GPOOL"
	var gotAmount, gotMemo string
	handler.stellarClient = &MockStellarClient{
		BuildPremiumTxFunc: func(sub, pool, assetCode, issuer, stroops, memo string) (string, error) {
			gotAmount, gotMemo = stroops, memo
			return "base64_xdr", nil
		},
	}

	t.Run("Valid Request", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/subscriptions/sub-1/premium-envelope", subscriber, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "base64_xdr")
		assert.Contains(t, w.Body.String(), `"amount":"2.0000000"`)
		assert.Equal(t, "20000000", gotAmount)
		assert.Equal(t, "sub-1", gotMemo)
	})

	t.Run("Other Wallet", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/subscriptions/sub-1/premium-envelope", daoMember, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unknown Subscription", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/subscriptions/sub-404/premium-envelope", subscriber, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Stellar Failure", func(t *testing.T) {
		handler.stellarClient = &MockStellarClient{
			BuildPremiumTxFunc: func(sub, pool, assetCode, issuer, stroops, memo string) (string, error) {
				return "", errors.New("account not found")
			},
		}
		w := doJSON(router, http.MethodGet, "/subscriptions/sub-1/premium-envelope", subscriber, nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestUploadAndFetch(t *testing.T) {
	store := blobstore.NewMemoryStore("http://test/api/v1/uploads")
	svc := setupTestLedger(t, func(o *ledger.Options) { o.Blobs = store })
	handler := setupTestHandler(t, svc)
	handler.uploads = store

	router := newTestRouter()
	router.POST("/uploads", handler.Upload)
	router.GET("/uploads/:id", handler.GetUpload)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="damage.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	part.Write([]byte("hello"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-Address", subscriber)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var up models.ImageUpload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", up.Hash)

	id := up.URL[strings.LastIndex(up.URL, "/")+1:]
	w = doJSON(router, http.MethodGet, "/uploads/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(router, http.MethodGet, "/uploads/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/uploads", subscriber, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditArchive(t *testing.T) {
	handler := setupTestHandler(t, setupTestLedger(t))
	router := newTestRouter()
	router.GET("/audit/archive", handler.AuditArchive)

	w := doJSON(router, http.MethodGet, "/audit/archive", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	archive := &fakeArchive{events: []models.AuditEvent{{ID: "evt-6", Event: "deposit_made"}}}
	handler.archive = archive
	w = doJSON(router, http.MethodGet, "/audit/archive?actor="+daoMember+"&limit=10", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deposit_made")
	assert.Equal(t, daoMember, archive.actor)
	assert.Equal(t, 10, archive.limit)
}
