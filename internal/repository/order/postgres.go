package order

import (
	"context"
	"errors"
	"fmt"
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

type cartLine struct {
	variantID  string
	quantity   int
	priceCents int64
	name       string
	sku        string
	stock      int
}

// MaterializeFromCart converts an active cart into an order, order items,
// a payment record and a converted cart, all inside one serializable
// transaction. Any failure rolls the whole thing back; partial orders are
// never observable.
func (r *postgresRepo) MaterializeFromCart(ctx context.Context, in MaterializeInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Step 1: the cart must still exist and still be active.
	var userID, cartStatus string
	err = tx.QueryRow(ctx, `
SELECT user_id, status
FROM carts
WHERE id = $1
FOR UPDATE
`, in.CartID).Scan(&userID, &cartStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cartStatus != domain.CartStatusActive {
		return nil, domain.ErrCartConsumed
	}

	lines, err := fetchLines(ctx, tx, in.CartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Step 2: the order itself, amounts from the validated processor charge.
	var order domain.Order
	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, user_id, status, amount_cents, currency, shipping_address, billing_address)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, created_at
`, in.OrderNumber, userID, domain.OrderStatusPaid, in.AmountCents, in.Currency, in.ShippingAddress, in.BillingAddress).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = in.OrderNumber
	order.UserID = userID
	order.Status = domain.OrderStatusPaid
	order.AmountCents = in.AmountCents
	order.Currency = in.Currency
	order.ShippingAddress = in.ShippingAddress
	order.BillingAddress = in.BillingAddress

	// Step 3: item snapshots plus guarded stock decrements.
	for _, line := range lines {
		var item domain.OrderItem
		err = tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, variant_id, quantity, price_cents, product_name, sku)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`, order.ID, line.variantID, line.quantity, line.priceCents, line.name, line.sku).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
		item.OrderID = order.ID
		item.VariantID = line.variantID
		item.Quantity = line.quantity
		item.PriceCents = line.priceCents
		item.ProductName = line.name
		item.SKU = line.sku
		order.Items = append(order.Items, item)

		// The guard clause keeps stock from going negative even if a race
		// slipped past validation; zero rows affected means the decrement
		// would have done exactly that.
		cmd, err := tx.Exec(ctx, `
UPDATE product_variants
SET stock = stock - $1
WHERE id = $2 AND stock >= $1
`, line.quantity, line.variantID)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, fmt.Errorf("variant %s: %w", line.sku, domain.ErrStockConflict)
		}
	}

	// Step 4: payment record referencing the processor transaction.
	if _, err := tx.Exec(ctx, `
INSERT INTO payments (order_id, amount_cents, currency, processor_txn_id, status, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
`, order.ID, in.AmountCents, in.Currency, in.ProcessorTxnID, in.PaymentStatus, in.PaymentMetadata); err != nil {
		return nil, err
	}

	// Step 5: consume the cart.
	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET status = 'converted', updated_at = now()
WHERE id = $1 AND status = 'active'
`, in.CartID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrCartConsumed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Printf("order repo: materialized order_id=%s cart_id=%s amount_cents=%d currency=%s", order.ID, in.CartID, in.AmountCents, in.Currency)
	return &order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, order_number, user_id, status, amount_cents, currency, shipping_address, billing_address, created_at
FROM orders
WHERE id = $1
`
	var order domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Status,
		&order.AmountCents,
		&order.Currency,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const itemsQ = `
SELECT id::text, order_id::text, variant_id::text, quantity, price_cents, product_name, sku
FROM order_items
WHERE order_id = $1
`
	rows, err := r.pool.Query(ctx, itemsQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.Quantity, &item.PriceCents, &item.ProductName, &item.SKU); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &order, nil
}

func fetchLines(ctx context.Context, tx pgx.Tx, cartID string) ([]cartLine, error) {
	const q = `
SELECT ci.variant_id::text, ci.quantity, pv.price_cents, pv.name, pv.sku, pv.stock
FROM cart_items ci
JOIN product_variants pv ON pv.id = ci.variant_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC
FOR UPDATE OF pv
`
	rows, err := tx.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.variantID, &line.quantity, &line.priceCents, &line.name, &line.sku, &line.stock); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
