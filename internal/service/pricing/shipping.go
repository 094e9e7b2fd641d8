package pricing

import "github.com/shopspring/decimal"

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

var (
	freeShippingThreshold = decimal.NewFromFloat(75.00)

	shippingRates = map[ShippingMethod]decimal.Decimal{
		ShippingStandard: decimal.NewFromFloat(9.99),
		ShippingExpress:  decimal.NewFromFloat(19.99),
	}
)

// shippingCost applies the flat rate for the method, with free shipping
// taking precedence once the subtotal crosses the threshold. Unknown methods
// fall back to standard.
func shippingCost(subtotal decimal.Decimal, method ShippingMethod) (cost decimal.Decimal, resolved ShippingMethod, free bool) {
	rate, ok := shippingRates[method]
	if !ok {
		method = ShippingStandard
		rate = shippingRates[ShippingStandard]
	}
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero, method, true
	}
	return rate, method, false
}
