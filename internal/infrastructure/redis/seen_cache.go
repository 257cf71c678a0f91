package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SeenEventCache is a best-effort pre-filter for replayed webhook events.
// The database unique constraint on event_id remains the idempotency
// boundary; this cache only short-circuits obvious retry storms before
// they reach the database. All cache failures degrade to "not seen".
type SeenEventCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSeenEventCache creates a cache with the given retention per event id.
func NewSeenEventCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SeenEventCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SeenEventCache{client: client, ttl: ttl, log: log}
}

func (c *SeenEventCache) key(eventID string) string {
	return fmt.Sprintf("webhook:seen:%s", eventID)
}

// Seen reports whether the event id was marked previously. Errors are
// logged and reported as false so the authoritative claim still runs.
func (c *SeenEventCache) Seen(ctx context.Context, eventID string) bool {
	n, err := c.client.Exists(ctx, c.key(eventID)).Result()
	if err != nil {
		c.log.Debug().Err(err).Str("event_id", eventID).Msg("seen-cache lookup failed")
		return false
	}
	return n > 0
}

// Mark records the event id. Failures are logged and ignored.
func (c *SeenEventCache) Mark(ctx context.Context, eventID string) {
	if err := c.client.Set(ctx, c.key(eventID), 1, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("event_id", eventID).Msg("seen-cache mark failed")
	}
}
