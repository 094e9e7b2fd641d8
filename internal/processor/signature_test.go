package processor

import (
	"errors"
	"testing"
	"time"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now := time.Unix(1_700_000_000, 0)

	header := Sign(payload, "whsec_test", now)
	if err := VerifySignature(payload, header, "whsec_test", 5*time.Minute, now); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1_700_000_000, 0)

	header := Sign(payload, "whsec_other", now)
	err := VerifySignature(payload, header, "whsec_test", 5*time.Minute, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign([]byte(`{"amount":10000}`), "whsec_test", now)

	err := VerifySignature([]byte(`{"amount":5000}`), header, "whsec_test", 5*time.Minute, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Unix(1_700_000_000, 0)
	now := signedAt.Add(6 * time.Minute)

	header := Sign(payload, "whsec_test", signedAt)
	err := VerifySignature(payload, header, "whsec_test", 5*time.Minute, now)
	if !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("expected ErrStaleTimestamp, got %v", err)
	}
}

func TestVerifySignatureFutureTimestampRejected(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Unix(1_700_000_000, 0)
	signedAt := now.Add(10 * time.Minute)

	header := Sign(payload, "whsec_test", signedAt)
	err := VerifySignature(payload, header, "whsec_test", 5*time.Minute, now)
	if !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("expected ErrStaleTimestamp, got %v", err)
	}
}

func TestVerifySignatureZeroToleranceSkipsCheck(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Unix(1_700_000_000, 0)
	now := signedAt.Add(24 * time.Hour)

	header := Sign(payload, "whsec_test", signedAt)
	if err := VerifySignature(payload, header, "whsec_test", 0, now); err != nil {
		t.Fatalf("verify with zero tolerance: %v", err)
	}
}

func TestVerifySignatureMissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", "whsec_test", 5*time.Minute, time.Now())
	if !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
	err = VerifySignature([]byte(`{}`), "   ", "whsec_test", 5*time.Minute, time.Now())
	if !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature for blank header, got %v", err)
	}
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		name   string
		header string
	}{
		{"no pairs", "garbage"},
		{"missing digest", "t=1700000000"},
		{"missing timestamp", "v1=deadbeef"},
		{"bad timestamp", "t=notanumber,v1=deadbeef"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature([]byte(`{}`), tc.header, "whsec_test", 5*time.Minute, now)
			if !errors.Is(err, ErrMalformedSignature) {
				t.Fatalf("expected ErrMalformedSignature, got %v", err)
			}
		})
	}
}
