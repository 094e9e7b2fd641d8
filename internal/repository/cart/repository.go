package cart

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, userID string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertItem(ctx context.Context, cartID, variantID string, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, variantID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, variantID string) error
}
