package cart

import (
	"context"
	"errors"

	"storefront-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id, status)
VALUES ($1, 'active')
RETURNING id::text, user_id, status, created_at, updated_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Status,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id, status, created_at, updated_at
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id, status, created_at, updated_at
FROM carts
WHERE user_id = $1 AND status = 'active'
`
	return r.fetchCart(ctx, q, userID)
}

// UpsertItem adds quantity to an existing (cart, variant) row or inserts a
// new one. The conflict clause keeps concurrent increments from losing
// updates.
func (r *postgresRepo) UpsertItem(ctx context.Context, cartID, variantID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, variant_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, cartID, variantID, quantity); err != nil {
		return err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, variantID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE cart_id = $2 AND variant_id = $3
`, quantity, cartID, variantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, variantID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND variant_id = $2
`, cartID, variantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, args...).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Status,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// Joined against product_variants so callers see current price and stock,
	// not figures captured when the item was added.
	const itemsQuery = `
SELECT ci.id::text, ci.cart_id::text, ci.variant_id::text, ci.quantity,
       pv.sku, pv.name, pv.price_cents, pv.currency, pv.stock, ci.created_at
FROM cart_items ci
JOIN product_variants pv ON pv.id = ci.variant_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.VariantID,
			&item.Quantity,
			&item.SKU,
			&item.Name,
			&item.UnitPriceCents,
			&item.Currency,
			&item.Stock,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET updated_at = now()
WHERE id = $1
`, cartID)
	return err
}
