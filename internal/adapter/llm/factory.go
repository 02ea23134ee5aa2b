package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

// envFallbacks maps provider types to the conventional env var checked
// when the secret store has no entry.
var envFallbacks = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Registry holds the built text providers keyed by name.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]domain.TextProvider
	defaultName string
}

// Register adds or replaces a named provider.
func (r *Registry) Register(name string, p domain.TextProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get returns the provider with the given name, or the default provider
// when name is empty.
func (r *Registry) Get(name string) (domain.TextProvider, error) {
	if name == "" {
		name = r.defaultName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, name)
	}
	return p, nil
}

// Default returns the default provider.
func (r *Registry) Default() (domain.TextProvider, error) {
	return r.Get("")
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// BuildRegistry constructs text providers from config.
//
// Credential handling follows a strict split: a credential that is
// MISSING (absent from the store and environment, or a placeholder)
// downgrades that provider to a mock with a warning, because a dev
// machine without keys must still run. A credential store that FAILS
// (unreadable, malformed) is an infrastructure error and aborts
// startup, because silently mocking in production would mask an outage.
func BuildRegistry(ctx context.Context, cfg config.ProvidersConfig, resolver secrets.Resolver, logger *slog.Logger) (*Registry, error) {
	reg := &Registry{
		providers:   make(map[string]domain.TextProvider, len(cfg.Text)),
		defaultName: cfg.DefaultText,
	}

	for _, pc := range cfg.Text {
		provider, err := buildOne(ctx, cfg, pc, resolver, logger)
		if err != nil {
			return nil, err
		}
		if cfg.CircuitBreaker.Enabled {
			provider = resilient.NewBreakerTextProvider(provider, cfg.CircuitBreaker, logger)
		}
		reg.providers[pc.Name] = provider
	}

	if reg.defaultName == "" && len(cfg.Text) > 0 {
		reg.defaultName = cfg.Text[0].Name
	}
	if _, ok := reg.providers[reg.defaultName]; !ok && len(reg.providers) > 0 {
		return nil, fmt.Errorf("%w: default text provider %q not configured",
			domain.ErrProviderNotFound, reg.defaultName)
	}

	return reg, nil
}

func buildOne(ctx context.Context, cfg config.ProvidersConfig, pc config.ProviderConfig, resolver secrets.Resolver, logger *slog.Logger) (domain.TextProvider, error) {
	providerType := normalizeType(pc.Type)

	if cfg.MockMode || providerType == "mock" {
		return NewMockTextProvider(pc.Name, logger), nil
	}

	// Bedrock authenticates through the AWS credential chain, not an
	// API key, so it skips secret resolution.
	if providerType == "bedrock" {
		return NewBedrockProvider(ctx, pc, logger)
	}

	apiKey := pc.APIKey
	if secrets.IsPlaceholder(apiKey) {
		name := pc.SecretName
		if name == "" {
			name = pc.Name + "_api_key"
		}
		resolved, err := resolver.Get(ctx, name, envFallbacks[providerType])
		if err != nil {
			return nil, fmt.Errorf("resolve credential for provider %q: %w", pc.Name, err)
		}
		apiKey = resolved
	}

	if secrets.IsPlaceholder(apiKey) {
		logger.Warn("provider credential missing, falling back to mock",
			"provider", pc.Name, "type", providerType)
		return NewMockTextProvider(pc.Name, logger), nil
	}

	pc.APIKey = apiKey
	switch providerType {
	case "openai":
		return NewOpenAIProvider(pc, logger), nil
	case "anthropic":
		return NewAnthropicProvider(pc, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown text provider type %q",
			domain.ErrProviderNotFound, pc.Type)
	}
}
