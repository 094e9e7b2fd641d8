package variant

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.ProductVariant, error)
	GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error)
	Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error)
}
