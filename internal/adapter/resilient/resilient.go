// Package resilient provides the shared execution policy for external
// provider calls: bounded retry with non-retryable short-circuiting,
// HTTP status → domain error mapping, pooled HTTP transports, and a
// circuit breaker wrapper.
package resilient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ftcguard/internal/domain"
)

// DefaultMaxAttempts is the total call budget: 1 initial attempt + 2 retries.
const DefaultMaxAttempts = 3

// defaultBackoff is the base delay before the first retry; it doubles per
// attempt.
const defaultBackoff = 500 * time.Millisecond

// Policy parameterizes Do. The zero value gets the defaults.
type Policy struct {
	// MaxAttempts is the total number of underlying calls (not retries).
	MaxAttempts int
	// Backoff is the base delay before the first retry; doubled each
	// subsequent retry.
	Backoff time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Defaults to domain.IsRetryableError (401/403 and cancellations are
	// never retried).
	Retryable func(error) bool
	// Logger, when set, records each retried attempt at debug level.
	Logger *slog.Logger
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff <= 0 {
		p.Backoff = defaultBackoff
	}
	if p.Retryable == nil {
		p.Retryable = domain.IsRetryableError
	}
	return p
}

// Do executes fn under the retry policy. Non-retryable errors (auth
// failures, cancellation) surface immediately; transient errors are
// retried until the attempt budget is exhausted, after which the last
// error is wrapped in domain.ErrProviderError. Context cancellation
// mid-loop aborts further retries and surfaces ctx.Err().
func Do[T any](ctx context.Context, op string, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	p := policy.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, domain.WrapOp(op, err)
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.Retryable(err) {
			return zero, domain.WrapOp(op, err)
		}
		if attempt == p.MaxAttempts {
			break
		}

		if p.Logger != nil {
			p.Logger.Debug("retrying provider call",
				"op", op, "attempt", attempt, "error", err)
		}

		delay := p.Backoff << (attempt - 1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, domain.WrapOp(op, ctx.Err())
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w",
		op, domain.ErrProviderError, p.MaxAttempts, lastErr)
}
