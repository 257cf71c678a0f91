package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/copperkettle/catering/pkg/retry"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Guard wraps persistence access with a pre-attempt health check and
// bounded exponential-backoff retry. Only transient infrastructure errors
// are retried; deterministic business errors (constraint violations,
// validation failures) surface immediately.
type Guard struct {
	pool   *pgxpool.Pool
	policy retry.Policy
	log    zerolog.Logger
}

// NewGuard creates a connection guard around the given pool.
func NewGuard(pool *pgxpool.Pool, policy retry.Policy, log zerolog.Logger) *Guard {
	return &Guard{pool: pool, policy: policy, log: log}
}

// Execute runs fn under the retry policy. Before every attempt the pool is
// pinged so a dead connection is re-established before fn sees it. Every
// retry and the terminal failure are logged with the operation name and
// attempt count.
func (g *Guard) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, g.policy, retry.Options{
		RetryIf: IsRetryable,
		OnRetry: func(attempt uint, err error) {
			g.log.Warn().
				Err(err).
				Str("operation", name).
				Uint("attempt", attempt).
				Uint("max_attempts", g.policy.MaxAttempts).
				Dur("next_delay", g.policy.Delay(attempt)).
				Msg("retrying database operation")
		},
	}, func() error {
		if err := g.pool.Ping(ctx); err != nil {
			return fmt.Errorf("connection health check: %w", err)
		}
		return fn(ctx)
	})
	if err != nil {
		g.log.Error().Err(err).Str("operation", name).Msg("database operation failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ExecuteWithResult is Execute for operations that return a value.
func ExecuteWithResult[T any](ctx context.Context, g *Guard, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := g.Execute(ctx, name, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// retryablePgCodes are SQLSTATE codes outside class 08 that still indicate
// a transient server condition.
var retryablePgCodes = map[string]bool{
	"53300": true, // too_many_connections
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
}

// IsRetryable classifies an error as transient infrastructure failure
// (retry) versus deterministic failure (fail fast).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions.
		return strings.HasPrefix(pgErr.Code, "08") || retryablePgCodes[pgErr.Code]
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// pgx reports a dead or closing connection with plain errors.
	msg := err.Error()
	return strings.Contains(msg, "conn closed") || strings.Contains(msg, "closed pool")
}
