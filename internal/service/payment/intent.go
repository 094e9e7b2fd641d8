package payment

import (
	"context"
	"fmt"
	"io"
	"log"

	"storefront-api/internal/domain"
	"storefront-api/internal/processor"
	"storefront-api/internal/service/pricing"
)

// IntentService creates processor payment intents. The amount always comes
// from the pricing engine; the client never supplies or influences it.
type IntentService struct {
	engine    calculator
	processor processor.Client
	logger    *log.Logger
}

func NewIntentService(engine calculator, client processor.Client, logger *log.Logger) *IntentService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &IntentService{engine: engine, processor: client, logger: logger}
}

type CreateIntentInput struct {
	CartID          string
	UserID          string
	Email           string
	BillingAddress  *domain.Address
	ShippingAddress *domain.Address
	ShippingMethod  pricing.ShippingMethod
	SaveAddress     bool
}

type IntentOutput struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// ProcessorError wraps failures from the processor side so the HTTP layer
// can map them to 502 without leaking upstream error text.
type ProcessorError struct {
	Err error
}

func (e *ProcessorError) Error() string { return "payment processor failure: " + e.Err.Error() }
func (e *ProcessorError) Unwrap() error { return e.Err }

func (s *IntentService) Create(ctx context.Context, in CreateIntentInput) (*IntentOutput, error) {
	addr := in.ShippingAddress
	if addr == nil {
		addr = in.BillingAddress
	}
	calc, err := s.engine.Calculate(ctx, in.CartID, addr, in.ShippingMethod)
	if err != nil {
		return nil, err
	}

	amount := MinorUnits(calc.Total, calc.Currency)

	// The webhook validator replays the calculation from this metadata, so it
	// must carry every pricing input: resolved shipping method and the address
	// the tax lookup used.
	metadata := map[string]string{
		"cart_id":         in.CartID,
		"user_id":         in.UserID,
		"shipping_method": string(calc.ShippingMethod),
	}
	if addr != nil {
		metadata["tax_country"] = addr.Country
		metadata["tax_region"] = addr.Region
	}

	intent, err := s.processor.CreateIntent(ctx, processor.CreateIntentInput{
		AmountMinor: amount,
		Currency:    calc.Currency,
		Email:       in.Email,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, &ProcessorError{Err: fmt.Errorf("create intent for cart %s: %w", in.CartID, err)}
	}

	s.logger.Printf("payment: intent created cart_id=%s intent_id=%s amount=%d currency=%s", in.CartID, intent.ID, amount, calc.Currency)
	return &IntentOutput{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        calc.Currency,
	}, nil
}
