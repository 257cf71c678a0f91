package webhook

import "context"

// Repository is the append-only store for webhook events.
type Repository interface {
	// Claim atomically records the event if its id has not been seen.
	// Returns true when this call inserted the row (the caller owns
	// processing), false when the event id was already claimed.
	Claim(ctx context.Context, e *Event) (bool, error)
}
