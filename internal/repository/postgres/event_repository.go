package postgres

import (
	"context"
	"fmt"

	"github.com/copperkettle/catering/internal/domain/webhook"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository implements webhook.Repository using PostgreSQL. The
// webhook_events table is append-only; rows are never updated or deleted
// by this service.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Claim atomically records the event if its id has not been seen. The
// insert-if-absent on the event_id unique constraint is the idempotency
// boundary: under concurrent delivery of the same event exactly one caller
// observes fresh=true.
func (r *EventRepository) Claim(ctx context.Context, e *webhook.Event) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO webhook_events (event_id, event_type, received_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.Type, e.ReceivedAt, e.Payload,
	)
	if err != nil {
		return false, fmt.Errorf("claim webhook event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
