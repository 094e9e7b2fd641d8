package order

import (
	"context"

	"storefront-api/internal/domain"
)

// MaterializeInput carries the validated processor charge and the source cart.
// Amount and currency come from the processor record; validation already
// proved they equal the server-computed total.
type MaterializeInput struct {
	CartID          string
	OrderNumber     string
	AmountCents     int64
	Currency        string
	ProcessorTxnID  string
	PaymentStatus   string
	PaymentMetadata map[string]interface{}
	ShippingAddress map[string]interface{}
	BillingAddress  map[string]interface{}
}

type Repository interface {
	MaterializeFromCart(ctx context.Context, in MaterializeInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
