package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/config"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
	"github.com/sangkips/materials-console/internal/presentation/http/handler"
	"github.com/sangkips/materials-console/internal/presentation/http/middleware"
	"github.com/sangkips/materials-console/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Calculator  *handler.CalculatorHandler
	Reference   *handler.ReferenceHandler
	Draft       *handler.DraftHandler
	Transaction *handler.TransactionHandler
	Submission  *handler.SubmissionHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	// HealthDetails adds extra fields to the health response
	HealthDetails func() gin.H
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewRateLimiter(&deps.Cfg.RateLimit)
	}

	health := func(c *gin.Context) {
		body := gin.H{
			"status":       "ok",
			"service":      deps.Cfg.App.Name,
			"rate_limiter": rateLimiter.Stats(),
		}
		if deps.HealthDetails != nil {
			for k, v := range deps.HealthDetails() {
				body[k] = v
			}
		}
		c.JSON(200, body)
	}
	router.GET("/health", health)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())
		protected.Use(middleware.UpstreamCredentials())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

// NewRateLimiter builds the per-user limiter from the configured request budget
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.UserRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	return middleware.NewUserRateLimiter(rlCfg)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Calculator
	protected.POST("/calculator/line", h.Calculator.CalculateLine)

	// Reference data
	registerReferenceRoutes(protected, h)

	// Batches
	registerBatchRoutes(protected, h)

	// Drafts
	registerDraftRoutes(protected, h, deps)

	// Transactions
	transactions := protected.Group("/transactions")
	{
		transactions.GET("/:id", h.Transaction.Get)
		transactions.DELETE("/:id", h.Transaction.Delete)
	}

	// Submission ledger
	protected.GET("/submissions", h.Submission.List)
}

func registerReferenceRoutes(protected *gin.RouterGroup, h *Handlers) {
	reference := protected.Group("/reference")
	{
		reference.GET("/bootstrap", h.Reference.Bootstrap)
		reference.GET("/account-payables/:id/:sub", h.Reference.VendorScoped)
		reference.GET("/:resource", h.Reference.List)
	}
}

func registerBatchRoutes(protected *gin.RouterGroup, h *Handlers) {
	batches := protected.Group("/batches")
	{
		batches.GET("/products/:id/available", h.Reference.AvailableBatches)
		batches.GET("/purchase-details", h.Reference.PurchaseBatchDetails)
		batches.GET("/sale-details", h.Reference.SaleBatchDetails)
	}
}

func registerDraftRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	drafts := protected.Group("/drafts")
	{
		drafts.POST("", h.Draft.Create)
		drafts.GET("", h.Draft.List)
		drafts.GET("/:id", h.Draft.Get)
		drafts.DELETE("/:id", h.Draft.Discard)
		drafts.PUT("/:id/header", h.Draft.UpdateHeader)
		drafts.POST("/:id/lines", h.Draft.AddLine)
		drafts.PUT("/:id/lines/:line", h.Draft.UpdateLine)
		drafts.DELETE("/:id/lines/:line", h.Draft.RemoveLine)
		drafts.PUT("/:id/lines/:line/allocations", h.Draft.SetAllocations)
		drafts.POST("/:id/lines/:line/auto-allocate", h.Draft.AutoAllocate)
		drafts.PUT("/:id/payment", h.Draft.SetPayment)
		drafts.POST("/:id/confirm", h.Draft.Confirm)
		drafts.POST("/:id/cancel", h.Draft.Cancel)
	}

	// Submission with idempotency support
	submit := drafts.Group("")
	if deps.IdempotencyRepo != nil {
		submit.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))
	}
	submit.POST("/:id/submit", h.Draft.Submit)
}
