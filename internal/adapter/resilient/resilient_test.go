package resilient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftcguard/internal/domain"
)

// fastPolicy keeps retries quick in tests.
func fastPolicy() Policy {
	return Policy{Backoff: time.Millisecond}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), "test.op", fastPolicy(), func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", MapHTTPError(500, []byte("upstream exploded"))
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", result)
	assert.Equal(t, 3, attempts)
}

func TestDoAuthFailureShortCircuits(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), "test.op", fastPolicy(), func(context.Context) (string, error) {
		attempts++
		return "", MapHTTPError(401, []byte("bad key"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, domain.ErrAuthInvalid))
	assert.False(t, errors.Is(err, domain.ErrProviderError))
}

func TestDoForbiddenShortCircuits(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), "test.op", fastPolicy(), func(context.Context) (string, error) {
		attempts++
		return "", MapHTTPError(403, []byte("no access"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, domain.ErrAuthInvalid))
}

func TestDoExhaustsBudget(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), "test.op", fastPolicy(), func(context.Context) (int, error) {
		attempts++
		return 0, MapHTTPError(503, []byte("unavailable"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errors.Is(err, domain.ErrProviderError))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoCancellationAbortsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := Do(ctx, "test.op", Policy{Backoff: time.Minute}, func(context.Context) (string, error) {
		attempts++
		cancel() // cancel mid-retry-loop, during the first backoff wait
		return "", fmt.Errorf("transient: %w", domain.ErrProviderError)
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrAuthInvalid))
}

func TestDoCustomRetryablePredicate(t *testing.T) {
	marker := errors.New("special")
	attempts := 0
	policy := Policy{
		Backoff:   time.Millisecond,
		Retryable: func(err error) bool { return !errors.Is(err, marker) },
	}

	_, err := Do(context.Background(), "test.op", policy, func(context.Context) (string, error) {
		attempts++
		return "", marker
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{401, domain.ErrAuthInvalid},
		{403, domain.ErrAuthInvalid},
		{429, domain.ErrRateLimit},
		{500, domain.ErrProviderError},
		{502, domain.ErrProviderError},
	}

	for _, tt := range tests {
		err := MapHTTPError(tt.status, []byte("body"))
		assert.True(t, errors.Is(err, tt.sentinel), "status %d", tt.status)
	}
}
