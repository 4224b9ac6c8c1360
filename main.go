package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yourusername/insure-dao/blobstore"
	"github.com/yourusername/insure-dao/config"
	"github.com/yourusername/insure-dao/feed"
	"github.com/yourusername/insure-dao/handlers"
	"github.com/yourusername/insure-dao/ledger"
	"github.com/yourusername/insure-dao/logger"
	"github.com/yourusername/insure-dao/metrics"
	"github.com/yourusername/insure-dao/middleware"
	"github.com/yourusername/insure-dao/models"
	"github.com/yourusername/insure-dao/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.InitLogger()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	metrics.InitLedgerMetrics()
	metrics.InitAPIMetrics()
	metrics.InitFeedMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit archive is optional; without a database the ledger keeps its
	// trail in memory only.
	var (
		sink    ledger.AuditSink
		archive handlers.AuditArchive
	)
	if cfg.DatabaseURL != "" {
		db, err := config.InitDB(cfg)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		auditStore := store.NewAuditStore(db)
		sink, archive = auditStore, auditStore
	}

	var (
		blobs   blobstore.Store
		uploads *blobstore.MemoryStore
	)
	if cfg.S3Bucket != "" {
		s3Store, err := blobstore.NewS3StoreFromEnv(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			zlog.Fatal("failed to init evidence bucket", zap.Error(err))
		}
		blobs = s3Store
	} else {
		uploads = blobstore.NewMemoryStore(cfg.UploadBaseURL)
		blobs = uploads
	}

	svc, err := ledger.New(ledger.Options{
		Logger: zlog,
		Blobs:  blobs,
		Audit:  sink,

		DaoMembers: cfg.DaoMembers,
		Toggles: models.Toggles{
			SlowResponses: cfg.SlowResponses,
			NetworkFlaky:  cfg.NetworkFlaky,
		},
		BaseLatency: cfg.BaseLatency,
		SlowLatency: cfg.SlowLatency,
	})
	if err != nil {
		zlog.Fatal("failed to init ledger", zap.Error(err))
	}

	hub := feed.NewHub(zlog)
	sinks := []feed.Sink{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := feed.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	if cfg.RedisAddr != "" {
		rdb := feed.InitRedis(cfg.RedisAddr)
		defer rdb.Close()
		sinks = append(sinks, feed.NewRedisSink(rdb, cfg.RedisChannel))
	}
	relay := feed.NewRelay(zlog, feed.DefaultBuffer, sinks...)
	relay.Attach(svc, ledger.Topics)
	go relay.Run(ctx)

	router := setupRouter(cfg, svc, uploads, archive, hub, zlog)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		zlog.Info("starting insure-dao API server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func setupRouter(cfg *config.Config, svc *ledger.Service, uploads *blobstore.MemoryStore, archive handlers.AuditArchive, hub http.Handler, zlog *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.GinMetricsMiddleware())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "insure-dao-api",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ledgerHandler := handlers.NewLedgerHandler(svc, cfg, uploads, archive, zlog)
	authHandler := handlers.NewAuthHandler(svc, cfg)
	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		api.POST("/auth/challenge", authHandler.Challenge)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/users/:address", ledgerHandler.GetUser)
		api.GET("/policies", ledgerHandler.ListPolicies)
		api.GET("/subscriptions", ledgerHandler.ListSubscriptions)
		api.GET("/claims", ledgerHandler.ListClaims)
		api.GET("/proposals", ledgerHandler.ListProposals)
		api.GET("/pool", ledgerHandler.PoolStats)
		api.GET("/deposits", ledgerHandler.ListDeposits)
		api.GET("/audit", ledgerHandler.AuditTrail)
		api.GET("/audit/archive", ledgerHandler.AuditArchive)
		api.GET("/summary", ledgerHandler.Summary)
		api.GET("/uploads/:id", ledgerHandler.GetUpload)
		api.GET("/toggles", ledgerHandler.GetToggles)
		api.GET("/ws", gin.WrapH(hub))
	}

	// writes are limited per wallet on top of the per-IP bucket above
	authed := api.Group("")
	authed.Use(middleware.JwtAuthMiddleware(cfg), limiter.Middleware())
	{
		authed.POST("/policies", ledgerHandler.CreatePolicy)
		authed.POST("/policies/:id/subscribe", ledgerHandler.Subscribe)
		authed.POST("/subscriptions/:id/pay", ledgerHandler.PayPremium)
		authed.GET("/subscriptions/:id/premium-envelope", ledgerHandler.PremiumEnvelope)
		authed.POST("/claims", ledgerHandler.SubmitClaim)
		authed.POST("/claims/:id/vote", ledgerHandler.VoteClaim)
		authed.POST("/claims/:id/payout", ledgerHandler.ExecutePayout)
		authed.POST("/proposals", ledgerHandler.CreateProposal)
		authed.POST("/proposals/:id/vote", ledgerHandler.VoteProposal)
		authed.POST("/deposits", ledgerHandler.Deposit)
		authed.POST("/deposits/:id/withdraw", ledgerHandler.Withdraw)
		authed.POST("/uploads", ledgerHandler.Upload)
	}

	dao := authed.Group("")
	dao.Use(middleware.RequireRole(middleware.RoleDAO))
	{
		dao.POST("/users/:address/credit", ledgerHandler.AdjustCredit)
		dao.POST("/proposals/:id/resolve", ledgerHandler.ResolveProposal)
		dao.PUT("/toggles", ledgerHandler.SetToggles)
		dao.POST("/reset", ledgerHandler.Reset)
	}

	return router
}
