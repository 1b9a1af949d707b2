package main

import (
	"log"

	"streaming-api/internal/api"
	"streaming-api/internal/billing"
	"streaming-api/internal/config"
	"streaming-api/internal/database"
	"streaming-api/internal/services"
	"streaming-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Build the reconciliation engine over an explicitly owned DB handle
	db := database.GetDB()
	subscriptions := billing.NewSubscriptionStore(db)
	ledger := billing.NewLedgerStore(db)
	users := billing.NewUserStore(db)

	var notifier billing.PaymentNotifier
	if mailer := services.NewPaymentMailer(); mailer != nil {
		notifier = mailer
	}

	reconciler := billing.NewReconciler(subscriptions, ledger, users, notifier)
	dispatcher := billing.NewDispatcher(reconciler)
	verifier := billing.NewVerifier(config.AppConfig.BillingWebhookSecret)
	entitlements := billing.NewEntitlementService(subscriptions)

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	handlers := api.NewHandlers(db, verifier, dispatcher, entitlements, ledger,
		services.NewPlaybackService(), services.NewTokenService())
	api.SetupRoutes(r, handlers)

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
