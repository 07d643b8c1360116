package connectors

import (
	"context"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// RetryPolicy controls how adapters retry transient upstream failures.
// Delays double per attempt from InitialDelay up to MaxDelay.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultRetryPolicy matches the upstream clients' behaviour: three tries
// with backoff between 2 and 10 seconds.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 2 * time.Second,
	MaxDelay:     10 * time.Second,
}

// Retry runs fn up to the policy's attempt count, backing off between
// tries. Only transient errors are retried; permanent failures (not
// found, access denied, malformed input) propagate immediately, as does
// context cancellation.
func Retry(ctx context.Context, policy RetryPolicy, op string, fn func(context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	delay := policy.InitialDelay
	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		logger.Debug("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt, policy.MaxAttempts, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return err
}
