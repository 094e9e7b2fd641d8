// Package webhook contains the processor webhook pipeline: idempotence
// ledger, event-type dispatch, amount validation and order materialization.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/service/payment"
	"storefront-api/internal/service/pricing"
)

type amountValidator interface {
	ValidateAmount(ctx context.Context, in payment.ValidateInput) payment.Result
}

type orderMaterializer interface {
	Materialize(ctx context.Context, in MaterializeOrder) (*domain.Order, error)
}

// MaterializeOrder is what the pipeline hands the order service once an
// event's amount has been validated.
type MaterializeOrder struct {
	CartID          string
	AmountCents     int64
	Currency        string
	ProcessorTxnID  string
	PaymentMetadata map[string]interface{}
	ShippingAddress map[string]interface{}
	BillingAddress  map[string]interface{}
}

type Status string

const (
	StatusProcessed Status = "processed"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusIgnored   Status = "ignored"
)

type Outcome struct {
	Status  Status
	OrderID string
	Err     error
}

type Pipeline struct {
	ledger    *Ledger
	validator amountValidator
	orders    orderMaterializer
	recorder  *metrics.Recorder
	logger    *log.Logger
}

func NewPipeline(ledger *Ledger, validator amountValidator, orders orderMaterializer, recorder *metrics.Recorder, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{
		ledger:    ledger,
		validator: validator,
		orders:    orders,
		recorder:  recorder,
		logger:    logger,
	}
}

// Handle runs one delivery through idempotence check, dispatch and, for
// validated successful payments, order materialization. It never panics the
// caller and never returns an error the HTTP layer must act on: the true
// status lives in the ledger.
func (p *Pipeline) Handle(ctx context.Context, ev Event, payload []byte) Outcome {
	decision := p.ledger.Ensure(ctx, ev.ID, ev.Type, payload)
	if !decision.ShouldProcess {
		return Outcome{Status: StatusDuplicate}
	}

	p.recorder.Attempt(ev.Type)

	if Classify(ev.Type) == ClassInformational {
		// Forward-compatible: new processor event types are acknowledged,
		// not errors.
		p.logger.Printf("webhook: informational event event_id=%s type=%s", ev.ID, ev.Type)
		p.ledger.MarkProcessed(ctx, ev.ID, true, nil)
		p.recorder.Success(ev.Type)
		return Outcome{Status: StatusIgnored}
	}

	switch ev.Type {
	case EventPaymentSucceeded:
		return p.handleSucceeded(ctx, ev)
	default:
		p.logger.Printf("webhook: payment failed event_id=%s intent_id=%s cart_id=%s", ev.ID, ev.Data.Object.ID, ev.Data.Object.Metadata["cart_id"])
		p.ledger.MarkProcessed(ctx, ev.ID, true, nil)
		p.recorder.Success(ev.Type)
		return Outcome{Status: StatusProcessed}
	}
}

func (p *Pipeline) handleSucceeded(ctx context.Context, ev Event) Outcome {
	intent := ev.Data.Object
	cartID := intent.Metadata["cart_id"]
	if cartID == "" {
		// Nothing to validate against; a redelivery would carry the same
		// payload, so this is conclusive, not retryable.
		err := fmt.Errorf("event %s: payment intent %s has no cart_id metadata", ev.ID, intent.ID)
		p.logger.Printf("webhook: %v", err)
		p.ledger.MarkProcessed(ctx, ev.ID, true, err)
		p.recorder.Failure(ev.Type)
		return Outcome{Status: StatusRejected, Err: err}
	}

	res := p.validator.ValidateAmount(ctx, payment.ValidateInput{
		CartID:          cartID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		ShippingAddress: pricedAddress(intent),
		ShippingMethod:  pricing.ShippingMethod(intent.Metadata["shipping_method"]),
	})
	if !res.Valid {
		// The alert already fired inside the validator. A tampered or
		// mispriced payment never produces an order, and redelivering the
		// same event cannot change the verdict, so the event is terminal.
		p.ledger.MarkProcessed(ctx, ev.ID, true, res.Err)
		p.recorder.Failure(ev.Type)
		return Outcome{Status: StatusRejected, Err: res.Err}
	}

	var shipSnapshot map[string]interface{}
	if intent.Shipping != nil {
		shipSnapshot = intent.Shipping.Address.Snapshot()
		if intent.Shipping.Name != "" {
			shipSnapshot["name"] = intent.Shipping.Name
		}
	}

	order, err := p.orders.Materialize(ctx, MaterializeOrder{
		CartID:         cartID,
		AmountCents:    intent.Amount,
		Currency:       intent.Currency,
		ProcessorTxnID: intent.ID,
		PaymentMetadata: map[string]interface{}{
			"event_id":      ev.ID,
			"intent_status": intent.Status,
			"latest_charge": intent.LatestCharge,
		},
		ShippingAddress: shipSnapshot,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCartConsumed) {
			// A concurrent delivery won the materialization race; this one
			// is a no-op success, not a failure to retry.
			p.logger.Printf("webhook: cart already converted event_id=%s cart_id=%s", ev.ID, cartID)
			p.ledger.MarkProcessed(ctx, ev.ID, true, nil)
			p.recorder.Success(ev.Type)
			return Outcome{Status: StatusDuplicate}
		}
		p.logger.Printf("webhook: materialization failed event_id=%s cart_id=%s error=%v", ev.ID, cartID, err)
		p.ledger.MarkProcessed(ctx, ev.ID, false, err)
		p.recorder.Failure(ev.Type)
		return Outcome{Status: StatusFailed, Err: err}
	}

	p.ledger.MarkProcessed(ctx, ev.ID, true, nil)
	p.recorder.Success(ev.Type)
	p.logger.Printf("webhook: order materialized event_id=%s cart_id=%s order_id=%s", ev.ID, cartID, order.ID)
	return Outcome{Status: StatusProcessed, OrderID: order.ID}
}

// pricedAddress reconstructs the address the intent was priced with. The
// metadata snapshot written at intent creation wins; shipping attached by the
// processor at confirmation is the fallback for intents that predate it.
func pricedAddress(intent PaymentIntent) *domain.Address {
	if country := intent.Metadata["tax_country"]; country != "" {
		return &domain.Address{Country: country, Region: intent.Metadata["tax_region"]}
	}
	if intent.Shipping == nil {
		return nil
	}
	addr := intent.Shipping.Address
	return &addr
}
