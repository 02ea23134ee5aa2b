package publish

import (
	"context"
	"fmt"
	"log/slog"

	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

// Build constructs the video publisher from config with the shared
// credential rules: missing credential downgrades to mock with a
// warning, resolver failure aborts startup.
func Build(ctx context.Context, cfg config.ProvidersConfig, autoInject bool, validator *compliance.Validator, injector *compliance.Injector, resolver secrets.Resolver, logger *slog.Logger) (domain.VideoPublisher, error) {
	pc := cfg.Publish
	if pc.Name == "" {
		pc.Name = "youtube"
	}

	if cfg.MockMode {
		return NewMockVideoPublisher(pc.Name, autoInject, validator, injector, logger), nil
	}

	apiKey := pc.APIKey
	if secrets.IsPlaceholder(apiKey) {
		name := pc.SecretName
		if name == "" {
			name = "youtube_oauth_token"
		}
		resolved, err := resolver.Get(ctx, name, "YOUTUBE_OAUTH_TOKEN")
		if err != nil {
			return nil, fmt.Errorf("resolve credential for provider %q: %w", pc.Name, err)
		}
		apiKey = resolved
	}

	if secrets.IsPlaceholder(apiKey) {
		logger.Warn("provider credential missing, falling back to mock",
			"provider", pc.Name, "type", "publish")
		return NewMockVideoPublisher(pc.Name, autoInject, validator, injector, logger), nil
	}

	pc.APIKey = apiKey
	return NewYouTubePublisher(pc, autoInject, validator, injector, logger), nil
}
