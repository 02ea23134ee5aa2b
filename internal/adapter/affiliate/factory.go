package affiliate

import (
	"context"
	"fmt"
	"log/slog"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

// Build constructs the product provider from config. Missing
// credentials downgrade to mock with a warning; a failing secret store
// aborts startup.
func Build(ctx context.Context, cfg config.ProvidersConfig, resolver secrets.Resolver, logger *slog.Logger) (domain.ProductProvider, error) {
	ac := cfg.Affiliate
	if ac.Name == "" {
		ac.Name = "amazon"
	}

	if cfg.MockMode {
		return NewMockProductProvider(ac.Name, logger), nil
	}

	apiKey := ac.APIKey
	if secrets.IsPlaceholder(apiKey) {
		name := ac.SecretName
		if name == "" {
			name = "amazon_paapi_key"
		}
		resolved, err := resolver.Get(ctx, name, "AMAZON_PAAPI_KEY")
		if err != nil {
			return nil, fmt.Errorf("resolve credential for provider %q: %w", ac.Name, err)
		}
		apiKey = resolved
	}

	if secrets.IsPlaceholder(apiKey) {
		logger.Warn("provider credential missing, falling back to mock",
			"provider", ac.Name, "type", "affiliate")
		return NewMockProductProvider(ac.Name, logger), nil
	}

	ac.APIKey = apiKey
	return NewAmazonProvider(ac, logger), nil
}
