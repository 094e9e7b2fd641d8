package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"

	"github.com/gin-gonic/gin"
)

// userID pulls the caller identity set by the auth layer in front of this
// service. Empty means the request never passed auth.
func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return "", false
	}
	return id, true
}

func getCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		cart, err := deps.CartSvc.Get(c.Request.Context(), uid)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var in cartsvc.AddItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		cart, err := deps.CartSvc.AddItem(c.Request.Context(), uid, in)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func updateCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var in updateItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		cart, err := deps.CartSvc.UpdateItem(c.Request.Context(), uid, c.Param("variantID"), in.Quantity)
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		cart, err := deps.CartSvc.RemoveItem(c.Request.Context(), uid, c.Param("variantID"))
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func writeCartError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"sku":       stockErr.SKU,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case err.Error() == "sku required", err.Error() == "quantity must be positive", err.Error() == "product not found":
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
