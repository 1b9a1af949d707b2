package middleware

import (
	"net/http"

	"streaming-api/internal/billing"
	"streaming-api/internal/response"
	"streaming-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// RequireSubscription gates a route behind an active subscription at the
// given plan level. requiredPlanID may be empty to require any active
// subscription. The decision is recomputed per request from current state;
// nothing is cached or mutated here.
func RequireSubscription(entitlements *billing.EntitlementService, requiredPlanID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error("Authentication required"))
			c.Abort()
			return
		}

		decision, err := entitlements.CheckAccess(c.Request.Context(), userID, requiredPlanID)
		if err != nil {
			logging.Errorf("Entitlement check failed - user: %d, error: %v", userID, err)
			c.JSON(http.StatusInternalServerError, response.Error("Error verifying subscription"))
			c.Abort()
			return
		}

		// Routes behind this middleware always need a live subscription,
		// even when no specific plan is demanded.
		if !decision.Allowed || decision.Reason == billing.ReasonNoSubscription {
			message := "Active subscription required"
			if decision.Reason == billing.ReasonInsufficientPlan {
				message = requiredPlanID + " subscription required"
			}
			c.JSON(http.StatusForbidden, response.ErrorWithCode(message, string(decision.Reason)))
			c.Abort()
			return
		}

		c.Next()
	}
}
