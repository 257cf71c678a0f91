package service

import "context"

// ConnectionGuard wraps persistence access with health-checked retry.
// Implemented by postgres.Guard.
type ConnectionGuard interface {
	Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// TxRunner runs a callback inside a database transaction. Implemented by
// postgres.TxManager.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeenCache is the best-effort duplicate pre-filter in front of the
// authoritative dedup claim. Implemented by redis.SeenEventCache.
type SeenCache interface {
	Seen(ctx context.Context, eventID string) bool
	Mark(ctx context.Context, eventID string)
}
