package webhookevent

import (
	"context"
	"time"

	"storefront-api/internal/domain"
)

type Repository interface {
	// Insert creates the record for a never-seen event id. The bool reports
	// whether this call created the row; false means another delivery got
	// there first and the existing record is returned instead.
	Insert(ctx context.Context, eventID, eventType, payloadHash string) (*domain.WebhookEventRecord, bool, error)
	Get(ctx context.Context, eventID string) (*domain.WebhookEventRecord, error)
	BumpRetry(ctx context.Context, eventID string) (*domain.WebhookEventRecord, error)
	MarkProcessed(ctx context.Context, eventID string, success bool, lastError string) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
