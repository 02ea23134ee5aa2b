package llm

import (
	"context"
	"fmt"
	"log/slog"

	"ftcguard/internal/domain"
)

// MockTextProvider implements domain.TextProvider without any network
// calls. It is substituted for real providers when mock mode is on or
// when a provider's credential cannot be resolved, so the pipeline
// stays runnable end to end.
type MockTextProvider struct {
	name   string
	logger *slog.Logger
}

// NewMockTextProvider creates a mock standing in for the named provider.
func NewMockTextProvider(name string, logger *slog.Logger) *MockTextProvider {
	return &MockTextProvider{name: name, logger: logger}
}

// Generate implements domain.TextProvider. Output is deterministic and
// clearly marked so mock content is never mistaken for provider output.
func (p *MockTextProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("mock text generation", "provider", p.name, "prompt_len", len(req.Prompt))

	text := fmt.Sprintf("MOCK RESPONSE [%s]: %s", p.name, truncate(req.Prompt, 120))
	return &domain.GenerateResult{
		Text: text,
		Cost: domain.CostEstimate{Provider: p.name, Model: "mock"},
	}, nil
}

// Name implements domain.TextProvider.
func (p *MockTextProvider) Name() string { return p.name }

// Configured implements domain.TextProvider. Mocks always report false
// so callers can tell real output from placeholder output.
func (p *MockTextProvider) Configured() bool { return false }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
