package seed

import (
	"context"
	"fmt"
	"log"

	"storefront-api/internal/domain"
	variantrepo "storefront-api/internal/repository/variant"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Apply inserts demo variants for manual testing. Idempotent via the sku
// upsert.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := variantrepo.NewPostgres(pool, logger)

	variants := []domain.ProductVariant{
		{
			SKU:        "TEE-CLASSIC-M",
			Name:       "Classic T-Shirt (M)",
			PriceCents: 2999,
			Currency:   "CAD",
			Stock:      120,
		},
		{
			SKU:        "MUG-LOGO",
			Name:       "Logo Mug",
			PriceCents: 1499,
			Currency:   "CAD",
			Stock:      200,
		},
		{
			SKU:        "HOODIE-ZIP-L",
			Name:       "Zip Hoodie (L)",
			PriceCents: 6499,
			Currency:   "CAD",
			Stock:      45,
		},
	}

	for _, v := range variants {
		if _, err := repo.Upsert(ctx, v); err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
		}
	}
	return nil
}
