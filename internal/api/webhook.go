package api

import (
	"errors"
	"net/http"
	"time"

	"streaming-api/internal/billing"
	"streaming-api/internal/response"
	"streaming-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// signatureHeader carries the provider's event signature.
const signatureHeader = "X-Billing-Signature"

// HandleBillingWebhook receives the provider's event feed.
// POST /api/subscription/webhook
//
// Response contract: 200 only after the event has been durably applied or
// explicitly classified as a no-op. Any other status makes the provider's
// at-least-once delivery redeliver the event; there is no internal retry.
func (h *Handlers) HandleBillingWebhook(c *gin.Context) {
	startTime := time.Now()

	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, response.Error("Failed to read request body"))
		return
	}

	event, err := h.verifier.Verify(body, c.GetHeader(signatureHeader))
	if err != nil {
		var verr *billing.VerificationError
		if errors.As(err, &verr) {
			logging.Errorf("Webhook signature verification failed: %v", verr)
			c.JSON(http.StatusBadRequest, response.Error("Signature verification failed"))
			return
		}
		// Signed but undecodable payload; redelivery would not help.
		logging.Errorf("Failed to decode webhook event: %v", err)
		c.JSON(http.StatusBadRequest, response.Error("Invalid event payload"))
		return
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), event); err != nil {
		logging.Errorf("Failed to process billing event - type: %s, id: %s, error: %v",
			event.Type(), event.EventID(), err)
		c.JSON(http.StatusInternalServerError, response.Error("Failed to process event"))
		return
	}

	logging.Infof("Billing event processed - type: %s, id: %s, time: %v",
		event.Type(), event.EventID(), time.Since(startTime))

	c.JSON(http.StatusOK, gin.H{"received": true})
}
