package api

import (
	"errors"
	"net/http"
	"time"

	"streaming-api/internal/billing"
	"streaming-api/internal/middleware"
	"streaming-api/internal/response"
	"streaming-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// GetPlans returns the plan catalog
// GET /api/subscription/plans
func (h *Handlers) GetPlans(c *gin.Context) {
	response.SuccessJSON(c, billing.Plans())
}

// subscriptionView is the client-facing shape of a subscription row.
type subscriptionView struct {
	ID                 uint   `json:"id"`
	PlanID             string `json:"plan_id"`
	Status             string `json:"status"`
	CurrentPeriodStart string `json:"current_period_start"`
	CurrentPeriodEnd   string `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

// GetCurrentSubscription returns the user's latest subscription, or null
// data when the user never subscribed
// GET /api/subscription/current
func (h *Handlers) GetCurrentSubscription(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error("Authentication required"))
		return
	}

	sub, err := h.entitlements.CurrentSubscription(c.Request.Context(), userID)
	if err != nil {
		logging.Errorf("Failed to load subscription - user: %d, error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error fetching subscription"))
		return
	}

	if sub == nil {
		response.SuccessJSON(c, nil)
		return
	}

	response.SuccessJSON(c, subscriptionView{
		ID:                 sub.ID,
		PlanID:             sub.PlanID,
		Status:             sub.Status,
		CurrentPeriodStart: sub.CurrentPeriodStart.UTC().Format(time.RFC3339),
		CurrentPeriodEnd:   sub.CurrentPeriodEnd.UTC().Format(time.RFC3339),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	})
}

// CancelSubscription flags the user's active subscription for cancellation
// at the end of the billing period
// POST /api/subscription/cancel
func (h *Handlers) CancelSubscription(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error("Authentication required"))
		return
	}

	if err := h.entitlements.CancelAtPeriodEnd(c.Request.Context(), userID); err != nil {
		if errors.Is(err, billing.ErrNoActiveSubscription) {
			c.JSON(http.StatusNotFound, response.Error("No active subscription found"))
			return
		}
		logging.Errorf("Failed to cancel subscription - user: %d, error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error canceling subscription"))
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Message: "Subscription will be canceled at the end of the billing period",
	})
}

// GetPaymentHistory returns the user's payment ledger, newest first
// GET /api/subscription/payments
func (h *Handlers) GetPaymentHistory(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error("Authentication required"))
		return
	}

	records, err := h.ledger.ListByUser(c.Request.Context(), userID)
	if err != nil {
		logging.Errorf("Failed to load payment history - user: %d, error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error fetching payment history"))
		return
	}

	response.SuccessJSON(c, records)
}
