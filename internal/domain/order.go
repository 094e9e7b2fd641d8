package domain

import "time"

const (
	OrderStatusPaid = "paid"

	PaymentStatusSucceeded = "succeeded"
)

type Order struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	UserID          string                 `json:"userId"`
	Status          string                 `json:"status"`
	AmountCents     int64                  `json:"amountCents"`
	Currency        string                 `json:"currency"`
	ShippingAddress map[string]interface{} `json:"shippingAddress,omitempty"`
	BillingAddress  map[string]interface{} `json:"billingAddress,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	Items           []OrderItem            `json:"items,omitempty"`
}

// OrderItem snapshots price and product identity at purchase time; later
// variant edits must not change what the order shows.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	VariantID   string `json:"variantId"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
}

type Payment struct {
	ID             string                 `json:"id"`
	OrderID        string                 `json:"orderId"`
	AmountCents    int64                  `json:"amountCents"`
	Currency       string                 `json:"currency"`
	ProcessorTxnID string                 `json:"processorTxnId"`
	Status         string                 `json:"status"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}
