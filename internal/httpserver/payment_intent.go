package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"storefront-api/internal/domain"
	paymentsvc "storefront-api/internal/service/payment"
	"storefront-api/internal/service/pricing"

	"github.com/gin-gonic/gin"
)

type paymentIntentRequest struct {
	CartID          string          `json:"cartId" binding:"required"`
	Email           string          `json:"email"`
	BillingAddress  *domain.Address `json:"billingAddress"`
	ShippingAddress *domain.Address `json:"shippingAddress"`
	ShippingMethod  string          `json:"shippingMethod"`
	SaveAddress     bool            `json:"saveAddress"`
}

// paymentIntentHandler computes the authoritative amount server-side and
// creates the processor-side charge intent. The client never supplies or
// influences the amount.
func paymentIntentHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cartId required"})
			return
		}

		out, err := deps.Intents.Create(c.Request.Context(), paymentsvc.CreateIntentInput{
			CartID:          req.CartID,
			UserID:          c.GetHeader("X-User-ID"),
			Email:           strings.TrimSpace(req.Email),
			BillingAddress:  req.BillingAddress,
			ShippingAddress: req.ShippingAddress,
			ShippingMethod:  pricing.ShippingMethod(req.ShippingMethod),
			SaveAddress:     req.SaveAddress,
		})
		if err != nil {
			writeIntentError(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// writeIntentError maps service errors onto client-correctable 4xx vs
// internal 5xx, without leaking store error text.
func writeIntentError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	var procErr *paymentsvc.ProcessorError
	switch {
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found or empty"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"sku":       stockErr.SKU,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, domain.ErrTaxRegionUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported tax region"})
	case errors.As(err, &procErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment processor unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
