package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/application/service"
	"github.com/sangkips/materials-console/internal/config"
	"github.com/sangkips/materials-console/internal/infrastructure/database"
	"github.com/sangkips/materials-console/internal/infrastructure/repository"
	"github.com/sangkips/materials-console/internal/infrastructure/upstream"
	"github.com/sangkips/materials-console/internal/presentation/http/handler"
	"github.com/sangkips/materials-console/internal/presentation/http/middleware"
	"github.com/sangkips/materials-console/internal/presentation/http/routes"
	"github.com/sangkips/materials-console/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.Issuer)

	// Initialize repositories
	draftStore := repository.NewDraftStore(repository.DraftStoreConfig{
		IdleTTL:       cfg.Drafts.IdleTTL,
		SweepInterval: cfg.Drafts.SweepInterval,
	})
	defer draftStore.Close()
	submissionRepo := repository.NewSubmissionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Business API gateways
	client := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	cache := upstream.NewCache(cfg.Cache.TTL)
	referenceGateway := upstream.NewReferenceGateway(client, cache)
	transactionGateway := upstream.NewTransactionGateway(client)

	// Initialize services
	draftService := service.NewDraftService(draftStore, referenceGateway, transactionGateway, submissionRepo, cache)
	referenceService := service.NewReferenceService(referenceGateway)
	transactionService := service.NewTransactionService(transactionGateway, cache)
	submissionService := service.NewSubmissionService(submissionRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Calculator:  handler.NewCalculatorHandler(),
		Reference:   handler.NewReferenceHandler(referenceService),
		Draft:       handler.NewDraftHandler(draftService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Submission:  handler.NewSubmissionHandler(submissionService),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	stopCleanup := middleware.StartIdempotencyCleanup(idempotencyRepo, time.Hour)
	defer stopCleanup()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		HealthDetails: func() gin.H {
			return gin.H{"cached_entries": cache.Len()}
		},
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s, business API: %s", cfg.App.Env, cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
