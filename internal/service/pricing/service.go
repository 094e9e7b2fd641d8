// Package pricing recomputes cart totals from persisted, authoritative data.
// Client-supplied amounts never enter a calculation.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront-api/internal/config"
	"storefront-api/internal/domain"

	"github.com/shopspring/decimal"
)

type cartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
}

type Engine struct {
	carts       cartRepo
	taxFallback string
	logger      *log.Logger
}

func New(carts cartRepo, taxFallback string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{carts: carts, taxFallback: taxFallback, logger: logger}
}

// Calculation is derived on every call, never cached: cart contents or
// addresses can change between calls.
type Calculation struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	TaxRate        decimal.Decimal
	TaxRegion      string
	Shipping       decimal.Decimal
	ShippingMethod ShippingMethod
	FreeShipping   bool
	Discount       decimal.Decimal
	Total          decimal.Decimal
	Currency       string
	Items          []ItemBreakdown
}

type ItemBreakdown struct {
	VariantID string
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Calculate reads the cart and its items fresh from the store and recomputes
// subtotal, tax, shipping and total. Pure read/compute: repeated calls on an
// unchanged cart return identical results.
func (e *Engine) Calculate(ctx context.Context, cartID string, addr *domain.Address, method ShippingMethod) (*Calculation, error) {
	cart, err := e.carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	calc := &Calculation{
		Discount: decimal.Zero,
	}

	subtotal := decimal.Zero
	for _, item := range cart.Items {
		// Stock is re-checked here, not only at add time: stock can change
		// between cart creation and checkout.
		if item.Quantity > item.Stock {
			return nil, &domain.InsufficientStockError{
				SKU:       item.SKU,
				Requested: item.Quantity,
				Available: item.Stock,
			}
		}

		unit := centsToDecimal(item.UnitPriceCents)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)

		if item.Currency != "" {
			if calc.Currency != "" && calc.Currency != item.Currency {
				return nil, fmt.Errorf("cart %s: %w (%s, %s)", cartID, domain.ErrCurrencyMixed, calc.Currency, item.Currency)
			}
			calc.Currency = item.Currency
		}
		calc.Items = append(calc.Items, ItemBreakdown{
			VariantID: item.VariantID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: line,
		})
	}
	calc.Subtotal = subtotal
	if calc.Currency == "" {
		calc.Currency = "CAD"
	}

	var country, region string
	if addr != nil {
		country = addr.Country
		region = addr.Region
	}
	rate, taxRegion, known := taxRate(country, region)
	if !known && e.taxFallback == config.TaxFallbackReject {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaxRegionUnknown, taxRegion)
	}
	calc.TaxRate = rate
	calc.TaxRegion = taxRegion
	calc.Tax = subtotal.Mul(rate).Round(2)

	calc.Shipping, calc.ShippingMethod, calc.FreeShipping = shippingCost(subtotal, method)

	calc.Total = subtotal.Add(calc.Tax).Add(calc.Shipping).Sub(calc.Discount)

	e.logger.Printf("pricing: cart_id=%s subtotal=%s tax=%s shipping=%s total=%s currency=%s",
		cartID, calc.Subtotal, calc.Tax, calc.Shipping, calc.Total, calc.Currency)
	return calc, nil
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
