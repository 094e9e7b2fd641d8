package httpserver

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"storefront-api/internal/processor"
	websvc "storefront-api/internal/service/webhook"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

var timeNow = time.Now

// webhookHandler verifies the processor signature before touching event
// semantics, then hands the delivery to the pipeline. After the signature
// passes it always answers 200: failure is communicated via the ledger's
// processed flag, not the HTTP status, so the processor's redelivery schedule
// stays calm.
func webhookHandler(logger *log.Logger, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		sig := c.GetHeader(processor.SignatureHeader)
		if err := processor.VerifySignature(payload, sig, deps.WebhookSecret, deps.WebhookTolerance, timeNow()); err != nil {
			logger.Printf("webhook: signature rejected error=%v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		var ev websvc.Event
		if err := json.Unmarshal(payload, &ev); err != nil || ev.ID == "" {
			// Signed but unparseable; acknowledge so the processor stops
			// redelivering a payload this build cannot read.
			logger.Printf("webhook: unparseable payload error=%v", err)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		outcome := deps.Webhooks.Handle(c.Request.Context(), ev, payload)

		resp := gin.H{"received": true, "status": string(outcome.Status)}
		if outcome.OrderID != "" {
			resp["orderId"] = outcome.OrderID
		}
		c.JSON(http.StatusOK, resp)
	}
}
