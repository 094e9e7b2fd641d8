package domain

import "time"

const (
	CartStatusActive    = "active"
	CartStatusConverted = "converted"
)

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Items     []CartItem `json:"items,omitempty"`
}

// CartItem carries the variant's current price and stock as read at fetch
// time. The join is re-run on every read so pricing always sees committed,
// current figures.
type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	VariantID      string    `json:"variantId"`
	Quantity       int       `json:"quantity"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Currency       string    `json:"currency"`
	Stock          int       `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}
