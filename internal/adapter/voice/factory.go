package voice

import (
	"context"
	"fmt"
	"log/slog"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

// Build constructs the voice provider from config, applying the same
// credential rules as the text factory: missing credential downgrades
// to mock with a warning, resolver failure aborts startup.
func Build(ctx context.Context, cfg config.ProvidersConfig, outDir string, resolver secrets.Resolver, logger *slog.Logger) (domain.VoiceProvider, error) {
	pc := cfg.Voice
	if pc.Name == "" {
		pc.Name = "elevenlabs"
	}

	if cfg.MockMode {
		return NewMockVoiceProvider(pc.Name, logger), nil
	}

	apiKey := pc.APIKey
	if secrets.IsPlaceholder(apiKey) {
		name := pc.SecretName
		if name == "" {
			name = "elevenlabs_api_key"
		}
		resolved, err := resolver.Get(ctx, name, "ELEVENLABS_API_KEY")
		if err != nil {
			return nil, fmt.Errorf("resolve credential for provider %q: %w", pc.Name, err)
		}
		apiKey = resolved
	}

	if secrets.IsPlaceholder(apiKey) {
		logger.Warn("provider credential missing, falling back to mock",
			"provider", pc.Name, "type", "voice")
		return NewMockVoiceProvider(pc.Name, logger), nil
	}

	pc.APIKey = apiKey
	return NewElevenLabsProvider(pc, outDir, logger), nil
}
