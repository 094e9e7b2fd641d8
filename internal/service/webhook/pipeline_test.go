package webhook

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/config"
	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/processor"
	"storefront-api/internal/service/payment"
	"storefront-api/internal/service/pricing"
)

type stubValidator struct {
	result payment.Result
	calls  []payment.ValidateInput
}

func (s *stubValidator) ValidateAmount(_ context.Context, in payment.ValidateInput) payment.Result {
	s.calls = append(s.calls, in)
	return s.result
}

type stubMaterializer struct {
	order *domain.Order
	err   error
	calls []MaterializeOrder
}

func (s *stubMaterializer) Materialize(_ context.Context, in MaterializeOrder) (*domain.Order, error) {
	s.calls = append(s.calls, in)
	return s.order, s.err
}

func succeededEvent(id, cartID string, amount int64) Event {
	var ev Event
	ev.ID = id
	ev.Type = EventPaymentSucceeded
	ev.Data.Object = PaymentIntent{
		ID:       "pi_123",
		Amount:   amount,
		Currency: "CAD",
		Status:   "succeeded",
		Metadata: map[string]string{"cart_id": cartID},
		Shipping: &ShippingInfo{Address: domain.Address{Country: "CA", Region: "QC"}},
	}
	return ev
}

func newPipeline(repo *stubEventRepo, validator *stubValidator, orders *stubMaterializer) (*Pipeline, *metrics.Recorder) {
	recorder := metrics.NewRecorder(nil)
	p := NewPipeline(NewLedger(repo, nil), validator, orders, recorder, nil)
	return p, recorder
}

func TestHandleSucceededMaterializesOrder(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{result: payment.Result{Valid: true, ServerAmount: 11500}}
	orders := &stubMaterializer{order: &domain.Order{ID: "order-1"}}
	p, recorder := newPipeline(repo, validator, orders)

	out := p.Handle(context.Background(), succeededEvent("evt_1", "cart-1", 11500), []byte(`{}`))
	if out.Status != StatusProcessed || out.OrderID != "order-1" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(orders.calls) != 1 {
		t.Fatalf("expected one materialization, got %d", len(orders.calls))
	}
	got := orders.calls[0]
	if got.CartID != "cart-1" || got.AmountCents != 11500 || got.Currency != "CAD" || got.ProcessorTxnID != "pi_123" {
		t.Fatalf("materialize input from validated charge, got %+v", got)
	}
	if got.ShippingAddress["country"] != "CA" {
		t.Fatalf("shipping address not snapshotted: %+v", got.ShippingAddress)
	}
	if len(repo.markCalls) != 1 || !repo.markCalls[0].success {
		t.Fatalf("event must be marked processed: %+v", repo.markCalls)
	}
	counts := recorder.Snapshot()[EventPaymentSucceeded]
	if counts.Attempted != 1 || counts.Succeeded != 1 || counts.Failed != 0 {
		t.Fatalf("unexpected counters: %+v", counts)
	}
}

func TestHandleDuplicateSkipsProcessing(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1", Processed: true}}
	validator := &stubValidator{}
	orders := &stubMaterializer{}
	p, recorder := newPipeline(repo, validator, orders)

	out := p.Handle(context.Background(), succeededEvent("evt_1", "cart-1", 11500), nil)
	if out.Status != StatusDuplicate {
		t.Fatalf("expected duplicate, got %+v", out)
	}
	if len(validator.calls) != 0 || len(orders.calls) != 0 {
		t.Fatalf("replay must not revalidate or materialize")
	}
	if counts := recorder.Snapshot()[EventPaymentSucceeded]; counts.Attempted != 0 {
		t.Fatalf("replay is not a processing attempt: %+v", counts)
	}
}

func TestHandleInvalidAmountRejectsWithoutOrder(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{result: payment.Result{
		Valid: false,
		Kind:  payment.MismatchAmount,
		Err:   errors.New("amount mismatch: processor 5000, server 10000"),
	}}
	orders := &stubMaterializer{}
	p, recorder := newPipeline(repo, validator, orders)

	out := p.Handle(context.Background(), succeededEvent("evt_1", "cart-1", 5000), nil)
	if out.Status != StatusRejected {
		t.Fatalf("expected rejected, got %+v", out)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("no order may be created for a mismatched amount")
	}
	// Conclusive verdict: the event is terminal, with the rejection recorded.
	if len(repo.markCalls) != 1 || !repo.markCalls[0].success || repo.markCalls[0].lastError == "" {
		t.Fatalf("rejection must be recorded terminally: %+v", repo.markCalls)
	}
	if counts := recorder.Snapshot()[EventPaymentSucceeded]; counts.Failed != 1 {
		t.Fatalf("rejection counts as failure: %+v", counts)
	}
}

func TestHandleMaterializationFailureLeavesRetry(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{result: payment.Result{Valid: true}}
	orders := &stubMaterializer{err: errors.New("tx deadlock")}
	p, recorder := newPipeline(repo, validator, orders)

	out := p.Handle(context.Background(), succeededEvent("evt_1", "cart-1", 11500), nil)
	if out.Status != StatusFailed {
		t.Fatalf("expected failed, got %+v", out)
	}
	if len(repo.markCalls) != 1 || repo.markCalls[0].success {
		t.Fatalf("failure must leave processed=false for retry: %+v", repo.markCalls)
	}
	if counts := recorder.Snapshot()[EventPaymentSucceeded]; counts.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", counts)
	}
}

func TestHandleCartAlreadyConvertedIsNoOpSuccess(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{result: payment.Result{Valid: true}}
	orders := &stubMaterializer{err: domain.ErrCartConsumed}
	p, _ := newPipeline(repo, validator, orders)

	out := p.Handle(context.Background(), succeededEvent("evt_1", "cart-1", 11500), nil)
	if out.Status != StatusDuplicate {
		t.Fatalf("lost materialization race is a no-op success, got %+v", out)
	}
	if len(repo.markCalls) != 1 || !repo.markCalls[0].success {
		t.Fatalf("event must be marked processed: %+v", repo.markCalls)
	}
}

func TestHandleMissingCartMetadata(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{}
	orders := &stubMaterializer{}
	p, _ := newPipeline(repo, validator, orders)

	ev := succeededEvent("evt_1", "", 11500)
	out := p.Handle(context.Background(), ev, nil)
	if out.Status != StatusRejected {
		t.Fatalf("expected rejected, got %+v", out)
	}
	if len(validator.calls) != 0 || len(orders.calls) != 0 {
		t.Fatalf("nothing to validate without a cart id")
	}
}

func TestHandlePaymentFailedIsLoggedOnly(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{}
	orders := &stubMaterializer{}
	p, recorder := newPipeline(repo, validator, orders)

	ev := Event{ID: "evt_1", Type: EventPaymentFailed}
	out := p.Handle(context.Background(), ev, nil)
	if out.Status != StatusProcessed {
		t.Fatalf("expected processed, got %+v", out)
	}
	if len(orders.calls) != 0 {
		t.Fatalf("failed payments never materialize orders")
	}
	if counts := recorder.Snapshot()[EventPaymentFailed]; counts.Succeeded != 1 {
		t.Fatalf("unexpected counters: %+v", counts)
	}
}

func TestHandleUnknownEventTypeIsInformational(t *testing.T) {
	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_1"}, insertCreated: true}
	validator := &stubValidator{}
	orders := &stubMaterializer{}
	p, _ := newPipeline(repo, validator, orders)

	ev := Event{ID: "evt_1", Type: "charge.dispute.created"}
	out := p.Handle(context.Background(), ev, nil)
	if out.Status != StatusIgnored {
		t.Fatalf("unknown types are informational, got %+v", out)
	}
	if len(repo.markCalls) != 1 || !repo.markCalls[0].success {
		t.Fatalf("informational events are acknowledged: %+v", repo.markCalls)
	}
}

func TestClassify(t *testing.T) {
	if Classify(EventPaymentSucceeded) != ClassCritical || Classify(EventPaymentFailed) != ClassCritical {
		t.Fatalf("payment events are critical")
	}
	if Classify("customer.created") != ClassInformational {
		t.Fatalf("unknown events are informational")
	}
}

type echoProcessorClient struct {
	in processor.CreateIntentInput
}

func (c *echoProcessorClient) CreateIntent(_ context.Context, in processor.CreateIntentInput) (*processor.Intent, error) {
	c.in = in
	return &processor.Intent{
		ID:           "pi_rt",
		ClientSecret: "pi_rt_secret",
		AmountMinor:  in.AmountMinor,
		Currency:     in.Currency,
		Status:       "requires_payment_method",
	}, nil
}

type fixedCartRepo struct {
	cart *domain.Cart
}

func (r *fixedCartRepo) GetByID(_ context.Context, _ string) (*domain.Cart, error) {
	return r.cart, nil
}

// The charged amount must validate at the webhook with the same pricing
// inputs the intent was created with, including a non-default shipping method
// and a billing-only address.
func TestIntentChargeValidatesAtWebhook(t *testing.T) {
	ctx := context.Background()
	carts := &fixedCartRepo{cart: &domain.Cart{
		ID:     "cart-1",
		Status: domain.CartStatusActive,
		Items: []domain.CartItem{{
			VariantID:      "var-1",
			SKU:            "TEE-CLASSIC-M",
			Quantity:       2,
			UnitPriceCents: 2500,
			Currency:       "CAD",
			Stock:          10,
		}},
	}}
	engine := pricing.New(carts, config.TaxFallbackZero, nil)

	client := &echoProcessorClient{}
	intents := payment.NewIntentService(engine, client, nil)
	out, err := intents.Create(ctx, payment.CreateIntentInput{
		CartID:         "cart-1",
		UserID:         "user-1",
		BillingAddress: &domain.Address{Country: "CA", Region: "ON"},
		ShippingMethod: pricing.ShippingExpress,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// 50.00 subtotal + 6.50 ON tax + 19.99 express.
	if out.Amount != 7649 {
		t.Fatalf("intent amount = %d, want 7649", out.Amount)
	}

	repo := &stubEventRepo{insertRec: &domain.WebhookEventRecord{EventID: "evt_rt"}, insertCreated: true}
	orders := &stubMaterializer{order: &domain.Order{ID: "order-rt"}}
	validator := payment.NewValidator(engine, nil, nil)
	p := NewPipeline(NewLedger(repo, nil), validator, orders, metrics.NewRecorder(nil), nil)

	var ev Event
	ev.ID = "evt_rt"
	ev.Type = EventPaymentSucceeded
	ev.Data.Object = PaymentIntent{
		ID:       out.PaymentIntentID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Status:   "succeeded",
		Metadata: client.in.Metadata,
	}

	res := p.Handle(ctx, ev, []byte(`{}`))
	if res.Status != StatusProcessed || res.OrderID != "order-rt" {
		t.Fatalf("charged amount rejected at webhook: %+v", res)
	}
	if len(orders.calls) != 1 || orders.calls[0].AmountCents != out.Amount {
		t.Fatalf("unexpected materialization: %+v", orders.calls)
	}
}
