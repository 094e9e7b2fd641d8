package httpserver

import (
	"context"
	"log"
	"time"

	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"
	paymentsvc "storefront-api/internal/service/payment"
	websvc "storefront-api/internal/service/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Consumer-side interfaces over the services so handlers are testable with
// stubs.
type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, variantID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, variantID string) (*domain.Cart, error)
}

type intentCreator interface {
	Create(ctx context.Context, in paymentsvc.CreateIntentInput) (*paymentsvc.IntentOutput, error)
}

type webhookPipeline interface {
	Handle(ctx context.Context, ev websvc.Event, payload []byte) websvc.Outcome
}

// Deps carries the wired services into the router.
type Deps struct {
	CartSvc          cartService
	Intents          intentCreator
	Webhooks         webhookPipeline
	WebhookSecret    string
	WebhookTolerance time.Duration
	CORSOrigins      []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = deps.CORSOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "X-User-ID")
		router.Use(cors.New(cfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/webhooks/payment", webhookHandler(logger, deps))
	router.POST("/checkout/payment-intent", paymentIntentHandler(deps))

	cartRoutes := router.Group("/cart")
	{
		cartRoutes.GET("", getCartHandler(deps))
		cartRoutes.POST("/items", addCartItemHandler(deps))
		cartRoutes.PATCH("/items/:variantID", updateCartItemHandler(deps))
		cartRoutes.DELETE("/items/:variantID", removeCartItemHandler(deps))
	}

	return router
}
