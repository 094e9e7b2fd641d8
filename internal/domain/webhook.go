package domain

import "time"

// WebhookEventRecord is the idempotence ledger row for a processor event.
// Exactly one row exists per external event id; redeliveries update it in
// place, never duplicate it.
type WebhookEventRecord struct {
	ID          string     `json:"id"`
	EventID     string     `json:"eventId"`
	EventType   string     `json:"eventType"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	PayloadHash string     `json:"payloadHash"`
	RetryCount  int        `json:"retryCount"`
	LastError   string     `json:"lastError,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
