package resilient

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
)

type scriptedProvider struct {
	calls int
	fail  bool
}

func (p *scriptedProvider) Generate(context.Context, domain.GenerateRequest) (*domain.GenerateResult, error) {
	p.calls++
	if p.fail {
		return nil, domain.ErrProviderError
	}
	return &domain.GenerateResult{Text: "ok"}, nil
}

func (p *scriptedProvider) Name() string     { return "scripted" }
func (p *scriptedProvider) Configured() bool { return true }

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &scriptedProvider{}
	b := NewBreakerTextProvider(inner, config.CircuitBreakerConfig{}, slog.Default())

	result, err := b.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, "scripted", b.Name())
	assert.True(t, b.Configured())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &scriptedProvider{fail: true}
	b := NewBreakerTextProvider(inner, config.CircuitBreakerConfig{
		MaxFailures: 2,
		Timeout:     time.Minute,
	}, slog.Default())

	for i := 0; i < 2; i++ {
		_, err := b.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)

	// Circuit is now open: calls fail fast without reaching the provider.
	_, err := b.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerOpenErrorIsNotAuthError(t *testing.T) {
	inner := &scriptedProvider{fail: true}
	b := NewBreakerTextProvider(inner, config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute}, slog.Default())

	b.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	_, err := b.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrAuthInvalid))
}
