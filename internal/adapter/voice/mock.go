package voice

import (
	"context"
	"log/slog"

	"ftcguard/internal/domain"
)

// MockVoiceProvider implements domain.VoiceProvider without network
// calls or audio files.
type MockVoiceProvider struct {
	name   string
	logger *slog.Logger
}

// NewMockVoiceProvider creates a mock standing in for the named provider.
func NewMockVoiceProvider(name string, logger *slog.Logger) *MockVoiceProvider {
	return &MockVoiceProvider{name: name, logger: logger}
}

// Synthesize implements domain.VoiceProvider.
func (p *MockVoiceProvider) Synthesize(ctx context.Context, req domain.SynthesizeRequest) (*domain.SynthesizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("mock voice synthesis", "provider", p.name, "chars", len(req.Text))

	return &domain.SynthesizeResult{
		AudioURL: "mock://audio/sample.mp3",
		Cost:     domain.CostEstimate{Provider: p.name, Model: "mock"},
	}, nil
}

// Name implements domain.VoiceProvider.
func (p *MockVoiceProvider) Name() string { return p.name }

// Configured implements domain.VoiceProvider.
func (p *MockVoiceProvider) Configured() bool { return false }
