// Package processor integrates with the external payment processor: webhook
// signature verification and server-side payment-intent creation.
package processor

import "context"

type CreateIntentInput struct {
	AmountMinor int64
	Currency    string
	Email       string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
	Status       string
}

type Client interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error)
}
