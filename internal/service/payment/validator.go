// Package payment validates processor charge amounts against the server's
// independently computed cart total and creates processor payment intents.
package payment

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront-api/internal/alert"
	"storefront-api/internal/domain"
	"storefront-api/internal/service/pricing"
)

type MismatchKind string

const (
	MismatchNone        MismatchKind = ""
	MismatchCurrency    MismatchKind = "currency_mismatch"
	MismatchAmount      MismatchKind = "amount_mismatch"
	MismatchCalculation MismatchKind = "calculation_failed"
)

type calculator interface {
	Calculate(ctx context.Context, cartID string, addr *domain.Address, method pricing.ShippingMethod) (*pricing.Calculation, error)
}

type Validator struct {
	engine calculator
	alerts alert.Sink
	logger *log.Logger
}

func NewValidator(engine calculator, alerts alert.Sink, logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Validator{engine: engine, alerts: alerts, logger: logger}
}

type ValidateInput struct {
	CartID          string
	Amount          int64
	Currency        string
	ShippingAddress *domain.Address
	ShippingMethod  pricing.ShippingMethod
}

type Result struct {
	Valid        bool
	Kind         MismatchKind
	ServerAmount int64
	Discrepancy  int64
	Calculation  *pricing.Calculation
	Err          error
}

// ValidateAmount recomputes the cart total fresh and compares it against the
// processor's recorded charge with zero tolerance. Every invalid outcome,
// including internal failures, raises a security alert before returning:
// ambiguous states are treated as invalid, never as implicitly valid.
func (v *Validator) ValidateAmount(ctx context.Context, in ValidateInput) Result {
	calc, err := v.engine.Calculate(ctx, in.CartID, in.ShippingAddress, in.ShippingMethod)
	if err != nil {
		res := Result{
			Valid: false,
			Kind:  MismatchCalculation,
			Err:   fmt.Errorf("server total unavailable: %w", err),
		}
		v.raise(ctx, in, res, alert.SeverityWarning, err.Error())
		return res
	}

	serverAmount := MinorUnits(calc.Total, calc.Currency)

	if !strings.EqualFold(strings.TrimSpace(in.Currency), calc.Currency) {
		// Currency switching is a known fraud vector; alert at full severity
		// rather than treating it as an ordinary validation failure.
		res := Result{
			Valid:        false,
			Kind:         MismatchCurrency,
			ServerAmount: serverAmount,
			Calculation:  calc,
			Err:          fmt.Errorf("currency mismatch: processor %q, server %q", in.Currency, calc.Currency),
		}
		v.raise(ctx, in, res, alert.SeverityCritical, res.Err.Error())
		return res
	}

	if in.Amount != serverAmount {
		// Positive discrepancy means the processor charged less than the
		// server total (the classic tampered-amount shape).
		discrepancy := serverAmount - in.Amount
		res := Result{
			Valid:        false,
			Kind:         MismatchAmount,
			ServerAmount: serverAmount,
			Discrepancy:  discrepancy,
			Calculation:  calc,
			Err:          fmt.Errorf("amount mismatch: processor %d, server %d", in.Amount, serverAmount),
		}
		v.raise(ctx, in, res, alert.SeverityCritical, res.Err.Error())
		return res
	}

	return Result{
		Valid:        true,
		ServerAmount: serverAmount,
		Calculation:  calc,
	}
}

// raise is fire-and-forget relative to the validation result: the caller
// still receives the invalid result even if alert delivery fails.
func (v *Validator) raise(ctx context.Context, in ValidateInput, res Result, severity alert.Severity, detail string) {
	if v.alerts == nil {
		return
	}
	v.alerts.Security(ctx, alert.SecurityAlert{
		Kind:            string(res.Kind),
		Severity:        severity,
		CartID:          in.CartID,
		ProcessorAmount: in.Amount,
		ServerAmount:    res.ServerAmount,
		Discrepancy:     res.Discrepancy,
		Currency:        in.Currency,
		Detail:          detail,
	})
	v.logger.Printf("payment: validation failed cart_id=%s kind=%s detail=%q", in.CartID, res.Kind, detail)
}
