package webhook

import "storefront-api/internal/domain"

// Event types the processor delivers. Anything not listed as critical is
// informational: logged and acknowledged, no state change. Unknown types
// never crash the handler.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type Class int

const (
	ClassInformational Class = iota
	ClassCritical
)

func Classify(eventType string) Class {
	switch eventType {
	case EventPaymentSucceeded, EventPaymentFailed:
		return ClassCritical
	default:
		return ClassInformational
	}
}

// Event is the processor's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

type PaymentIntent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
	Shipping     *ShippingInfo     `json:"shipping,omitempty"`
	LatestCharge string            `json:"latest_charge,omitempty"`
}

type ShippingInfo struct {
	Name    string         `json:"name,omitempty"`
	Address domain.Address `json:"address"`
}
