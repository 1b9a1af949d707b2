package api

import (
	"streaming-api/internal/billing"
	"streaming-api/internal/middleware"
	"streaming-api/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers bundles the wired engine pieces the HTTP layer depends on.
type Handlers struct {
	db           *gorm.DB
	verifier     *billing.Verifier
	dispatcher   *billing.Dispatcher
	entitlements *billing.EntitlementService
	ledger       *billing.LedgerStore
	playback     *services.PlaybackService
	tokens       *services.TokenService
}

// NewHandlers constructs the HTTP handler set from injected dependencies.
func NewHandlers(
	db *gorm.DB,
	verifier *billing.Verifier,
	dispatcher *billing.Dispatcher,
	entitlements *billing.EntitlementService,
	ledger *billing.LedgerStore,
	playback *services.PlaybackService,
	tokens *services.TokenService,
) *Handlers {
	return &Handlers{
		db:           db,
		verifier:     verifier,
		dispatcher:   dispatcher,
		entitlements: entitlements,
		ledger:       ledger,
		playback:     playback,
		tokens:       tokens,
	}
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	auth := middleware.AuthMiddleware(h.tokens)

	// API route group
	api := r.Group("/api")
	{
		// Subscription routes
		subscription := api.Group("/subscription")
		{
			// Public plan catalog
			subscription.GET("/plans", h.GetPlans)

			// Billing provider event endpoint (raw body, signed header)
			subscription.POST("/webhook", h.HandleBillingWebhook)

			// User-facing subscription routes (require authentication)
			subscription.GET("/current", auth, h.GetCurrentSubscription)
			subscription.POST("/cancel", auth, h.CancelSubscription)
			subscription.GET("/payments", auth, h.GetPaymentHistory)
		}

		// Video routes
		videos := api.Group("/videos")
		{
			videos.GET("", h.GetVideos)
			videos.GET("/:id/play", auth,
				middleware.RequireSubscription(h.entitlements, ""), h.GetPlayback)
		}
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}
