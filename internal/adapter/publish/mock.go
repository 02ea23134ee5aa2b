package publish

import (
	"context"
	"fmt"
	"log/slog"

	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
)

// MockVideoPublisher implements domain.VideoPublisher without network
// calls. It applies the same compliance gate as the real publisher so
// mock-mode runs still surface disclosure problems.
type MockVideoPublisher struct {
	name       string
	autoInject bool
	validator  *compliance.Validator
	injector   *compliance.Injector
	logger     *slog.Logger
}

// NewMockVideoPublisher creates a mock standing in for the named publisher.
func NewMockVideoPublisher(name string, autoInject bool, validator *compliance.Validator, injector *compliance.Injector, logger *slog.Logger) *MockVideoPublisher {
	return &MockVideoPublisher{
		name:       name,
		autoInject: autoInject,
		validator:  validator,
		injector:   injector,
		logger:     logger,
	}
}

// Publish implements domain.VideoPublisher.
func (p *MockVideoPublisher) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := p.validator.Validate(req.Description)
	if !result.HasDisclosure && !p.autoInject {
		return nil, fmt.Errorf("%w: description has no FTC disclosure and auto-inject is disabled",
			domain.ErrInvalidInput)
	}

	p.logger.Debug("mock video publish", "provider", p.name, "title", req.Title)

	return &domain.PublishResult{
		VideoID:   "mock-video-id",
		PublicURL: "https://example.com/watch/mock-video-id",
	}, nil
}

// Name implements domain.VideoPublisher.
func (p *MockVideoPublisher) Name() string { return p.name }

// Configured implements domain.VideoPublisher.
func (p *MockVideoPublisher) Configured() bool { return false }
