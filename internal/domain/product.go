package domain

import "time"

// ProductVariant is the authoritative source for price and stock. Pricing
// reads these fields fresh at calculation time and never trusts figures that
// did not come from this record.
type ProductVariant struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
}
