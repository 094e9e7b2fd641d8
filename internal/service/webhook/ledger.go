package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"

	"storefront-api/internal/domain"
)

type eventRepo interface {
	Insert(ctx context.Context, eventID, eventType, payloadHash string) (*domain.WebhookEventRecord, bool, error)
	BumpRetry(ctx context.Context, eventID string) (*domain.WebhookEventRecord, error)
	MarkProcessed(ctx context.Context, eventID string, success bool, lastError string) error
}

// Ledger decides, per external event id, whether a delivery should be
// processed. Decisions are keyed purely on the event id; the payload hash is
// stored for integrity auditing only.
type Ledger struct {
	repo   eventRepo
	logger *log.Logger
}

func NewLedger(repo eventRepo, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Ledger{repo: repo, logger: logger}
}

type Decision struct {
	ShouldProcess bool
	IsRetry       bool
	Record        *domain.WebhookEventRecord
}

// Ensure resolves an event id to a processing decision:
// never seen → process; seen and processed → replay, skip; seen but not
// processed → retry, process again. If the ledger store itself fails the
// delivery is processed anyway; the unique event_id constraint still bounds
// how far duplicates can go.
func (l *Ledger) Ensure(ctx context.Context, eventID, eventType string, payload []byte) Decision {
	hash := hashPayload(payload)

	rec, created, err := l.repo.Insert(ctx, eventID, eventType, hash)
	if err != nil {
		l.logger.Printf("webhook ledger: store unavailable, processing anyway event_id=%s error=%v", eventID, err)
		return Decision{ShouldProcess: true}
	}
	if created {
		return Decision{ShouldProcess: true, Record: rec}
	}

	if rec.Processed {
		l.logger.Printf("webhook ledger: replay rejected event_id=%s processed_at=%v", eventID, rec.ProcessedAt)
		return Decision{ShouldProcess: false, IsRetry: true, Record: rec}
	}

	// Previous attempt failed or crashed before marking; retries are
	// permitted indefinitely, the processor's redelivery schedule is the cap.
	bumped, err := l.repo.BumpRetry(ctx, eventID)
	if err != nil {
		l.logger.Printf("webhook ledger: retry bump failed, processing anyway event_id=%s error=%v", eventID, err)
		return Decision{ShouldProcess: true, IsRetry: true, Record: rec}
	}
	l.logger.Printf("webhook ledger: retry event_id=%s retry_count=%d", eventID, bumped.RetryCount)
	return Decision{ShouldProcess: true, IsRetry: true, Record: bumped}
}

// MarkProcessed records the outcome of a processing attempt. Only success
// flips the terminal processed flag; failures leave the record retryable with
// the error captured.
func (l *Ledger) MarkProcessed(ctx context.Context, eventID string, success bool, procErr error) {
	lastError := ""
	if procErr != nil {
		lastError = procErr.Error()
	}
	if err := l.repo.MarkProcessed(ctx, eventID, success, lastError); err != nil {
		l.logger.Printf("webhook ledger: mark processed failed event_id=%s success=%t error=%v", eventID, success, err)
	}
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
