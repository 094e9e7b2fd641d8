package webhookevent

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `id::text, event_id, event_type, processed, processed_at, payload_hash, retry_count, last_error, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Insert relies on the unique event_id constraint: concurrent first
// deliveries of the same event converge to exactly one created row.
func (r *postgresRepo) Insert(ctx context.Context, eventID, eventType, payloadHash string) (*domain.WebhookEventRecord, bool, error) {
	const q = `
INSERT INTO webhook_events (event_id, event_type, payload_hash)
VALUES ($1, $2, $3)
ON CONFLICT (event_id) DO NOTHING
RETURNING ` + recordColumns
	rec, err := r.scanRecord(r.pool.QueryRow(ctx, q, eventID, eventType, payloadHash))
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.Get(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *postgresRepo) Get(ctx context.Context, eventID string) (*domain.WebhookEventRecord, error) {
	const q = `
SELECT ` + recordColumns + `
FROM webhook_events
WHERE event_id = $1
`
	rec, err := r.scanRecord(r.pool.QueryRow(ctx, q, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) BumpRetry(ctx context.Context, eventID string) (*domain.WebhookEventRecord, error) {
	const q = `
UPDATE webhook_events
SET retry_count = retry_count + 1
WHERE event_id = $1 AND NOT processed
RETURNING ` + recordColumns
	rec, err := r.scanRecord(r.pool.QueryRow(ctx, q, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) MarkProcessed(ctx context.Context, eventID string, success bool, lastError string) error {
	const q = `
UPDATE webhook_events
SET processed = $2,
    processed_at = CASE WHEN $2 THEN now() ELSE processed_at END,
    last_error = $3
WHERE event_id = $1
`
	cmd, err := r.pool.Exec(ctx, q, eventID, success, lastError)
	if err != nil {
		r.logger.Printf("webhook repo: mark processed event_id=%s error=%v", eventID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
DELETE FROM webhook_events
WHERE processed AND processed_at < $1
`
	cmd, err := r.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) scanRecord(row pgx.Row) (*domain.WebhookEventRecord, error) {
	var rec domain.WebhookEventRecord
	if err := row.Scan(
		&rec.ID,
		&rec.EventID,
		&rec.EventType,
		&rec.Processed,
		&rec.ProcessedAt,
		&rec.PayloadHash,
		&rec.RetryCount,
		&rec.LastError,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
