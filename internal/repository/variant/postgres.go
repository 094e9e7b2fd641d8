package variant

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	const q = `
SELECT id::text, sku, name, price_cents, currency, stock, created_at
FROM product_variants
WHERE id = $1
`
	return r.fetchVariant(ctx, q, id)
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error) {
	const q = `
SELECT id::text, sku, name, price_cents, currency, stock, created_at
FROM product_variants
WHERE sku = $1
`
	return r.fetchVariant(ctx, q, sku)
}

func (r *postgresRepo) Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error) {
	const q = `
INSERT INTO product_variants (sku, name, price_cents, currency, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    stock = EXCLUDED.stock
RETURNING id::text, created_at
`
	res := v
	err := r.pool.QueryRow(ctx, q, v.SKU, v.Name, v.PriceCents, v.Currency, v.Stock).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("variant repo: upsert sku=%s error=%v", v.SKU, err)
		return nil, err
	}
	r.logger.Printf("variant repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return &res, nil
}

func (r *postgresRepo) fetchVariant(ctx context.Context, q string, arg interface{}) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.pool.QueryRow(ctx, q, arg).Scan(&v.ID, &v.SKU, &v.Name, &v.PriceCents, &v.Currency, &v.Stock, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("variant repo: fetch arg=%v error=%v", arg, err)
		return nil, err
	}
	return &v, nil
}
