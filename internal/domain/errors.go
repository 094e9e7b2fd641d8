package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart indicates the cart does not exist or has no items.
	ErrEmptyCart = errors.New("cart missing or empty")
	// ErrCartConsumed indicates the cart was already converted into an order.
	ErrCartConsumed = errors.New("cart already converted")
	// ErrTaxRegionUnknown is returned when tax fallback is configured to
	// reject and no rate is known for the address region.
	ErrTaxRegionUnknown = errors.New("no tax rate for region")
	// ErrStockConflict indicates a stock decrement would push inventory
	// negative. Inventory-consistency fault, not a user error.
	ErrStockConflict = errors.New("stock decrement conflict")
	// ErrCurrencyMixed indicates cart items carry more than one currency;
	// a single total cannot be computed across them.
	ErrCurrencyMixed = errors.New("cart items span multiple currencies")
)

// InsufficientStockError names the variant and the quantities involved so
// callers can surface an actionable message.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}
