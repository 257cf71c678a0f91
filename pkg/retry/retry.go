package retry

import (
	"context"
	"math"
	"time"

	"github.com/avast/retry-go/v4"
)

// Policy holds retry configuration. The delay for attempt n (1-based) is
// min(InitialDelay * Factor^(n-1), MaxDelay).
type Policy struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
}

// DefaultPolicy returns the default retry policy for persistence calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Factor:       2.0,
	}
}

// Delay computes the backoff delay before retry attempt n (1-based).
// The function is pure so delay sequences can be asserted without sleeping.
func (p Policy) Delay(attempt uint) time.Duration {
	if attempt == 0 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.Factor, float64(attempt-1))
	if d > float64(p.MaxDelay) || d < 0 {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Options customizes retry behavior. Zero-valued fields fall back to
// retrying every error and not reporting attempts.
type Options struct {
	// RetryIf decides whether an error is transient. When nil every
	// error is retried.
	RetryIf func(error) bool
	// OnRetry is invoked after each failed attempt (1-based) that will
	// be retried.
	OnRetry func(attempt uint, err error)
}

// Do executes fn with exponential backoff derived from the policy.
func Do(ctx context.Context, p Policy, opts Options, fn func() error) error {
	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.MaxAttempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// n is the zero-based count of completed attempts.
			return p.Delay(n + 1)
		}),
		retry.LastErrorOnly(true),
	}
	if opts.RetryIf != nil {
		retryOpts = append(retryOpts, retry.RetryIf(opts.RetryIf))
	}
	if opts.OnRetry != nil {
		retryOpts = append(retryOpts, retry.OnRetry(func(n uint, err error) {
			opts.OnRetry(n+1, err)
		}))
	}
	return retry.Do(fn, retryOpts...)
}

// DoWithResult executes a function with exponential backoff retry and returns a result
func DoWithResult[T any](ctx context.Context, p Policy, opts Options, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, opts, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}
