package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-api/internal/processor"
	websvc "storefront-api/internal/service/webhook"
)

type stubPipeline struct {
	outcome websvc.Outcome
	events  []websvc.Event
}

func (s *stubPipeline) Handle(ctx context.Context, ev websvc.Event, payload []byte) websvc.Outcome {
	s.events = append(s.events, ev)
	return s.outcome
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestWebhookHandlerValidSignature(t *testing.T) {
	pipeline := &stubPipeline{outcome: websvc.Outcome{Status: websvc.StatusProcessed, OrderID: "order-1"}}
	router := buildRouter(testLogger(), nil, Deps{
		Webhooks:         pipeline,
		WebhookSecret:    "whsec_test",
		WebhookTolerance: 5 * time.Minute,
	})

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":11500,"currency":"cad","metadata":{"cart_id":"cart-1"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(processor.SignatureHeader, processor.Sign(payload, "whsec_test", time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "processed" || resp["orderId"] != "order-1" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if len(pipeline.events) != 1 || pipeline.events[0].ID != "evt_1" {
		t.Fatalf("pipeline saw events %+v", pipeline.events)
	}
}

func TestWebhookHandlerMissingSignature(t *testing.T) {
	pipeline := &stubPipeline{}
	router := buildRouter(testLogger(), nil, Deps{
		Webhooks:         pipeline,
		WebhookSecret:    "whsec_test",
		WebhookTolerance: 5 * time.Minute,
	})

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(pipeline.events) != 0 {
		t.Fatal("pipeline should not run without a valid signature")
	}
}

func TestWebhookHandlerWrongSecret(t *testing.T) {
	pipeline := &stubPipeline{}
	router := buildRouter(testLogger(), nil, Deps{
		Webhooks:         pipeline,
		WebhookSecret:    "whsec_test",
		WebhookTolerance: 5 * time.Minute,
	})

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(processor.SignatureHeader, processor.Sign(payload, "whsec_wrong", time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(pipeline.events) != 0 {
		t.Fatal("pipeline should not run for a forged signature")
	}
}

func TestWebhookHandlerSignedButUnparseable(t *testing.T) {
	pipeline := &stubPipeline{}
	router := buildRouter(testLogger(), nil, Deps{
		Webhooks:         pipeline,
		WebhookSecret:    "whsec_test",
		WebhookTolerance: 5 * time.Minute,
	})

	payload := []byte(`not json at all`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(processor.SignatureHeader, processor.Sign(payload, "whsec_test", time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after signature passes", rec.Code)
	}
	if len(pipeline.events) != 0 {
		t.Fatal("pipeline should not see an unparseable payload")
	}
}

func TestWebhookHandlerDuplicateStillAcknowledged(t *testing.T) {
	pipeline := &stubPipeline{outcome: websvc.Outcome{Status: websvc.StatusDuplicate}}
	router := buildRouter(testLogger(), nil, Deps{
		Webhooks:         pipeline,
		WebhookSecret:    "whsec_test",
		WebhookTolerance: 5 * time.Minute,
	})

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(processor.SignatureHeader, processor.Sign(payload, "whsec_test", time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "duplicate" {
		t.Fatalf("unexpected response: %v", resp)
	}
}
