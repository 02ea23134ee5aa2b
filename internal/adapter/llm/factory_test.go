package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

type fakeResolver struct {
	values map[string]string
	err    error
}

func (r *fakeResolver) Get(_ context.Context, name, _ string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.values[name], nil
}

func (r *fakeResolver) GetAll(ctx context.Context, refs []secrets.Ref) (map[string]string, error) {
	out := map[string]string{}
	for _, ref := range refs {
		v, err := r.Get(ctx, ref.Name, ref.EnvVar)
		if err != nil {
			return nil, err
		}
		if v != "" {
			out[ref.Name] = v
		}
	}
	return out, nil
}

func TestBuildRegistryMockMode(t *testing.T) {
	cfg := config.ProvidersConfig{
		MockMode: true,
		Text: []config.ProviderConfig{
			{Name: "openai", Type: "openai", APIKey: "real-key"},
		},
	}

	reg, err := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, err := reg.Get("openai")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Configured() {
		t.Error("mock-mode provider reports Configured() = true")
	}

	result, err := p.Generate(context.Background(), domain.GenerateRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(result.Text, "MOCK RESPONSE") {
		t.Errorf("Text = %q, want MOCK RESPONSE prefix", result.Text)
	}
	if result.Cost.USD != 0 {
		t.Errorf("mock cost = %v, want 0", result.Cost.USD)
	}
}

func TestBuildRegistryMissingSecretFallsBackToMock(t *testing.T) {
	cfg := config.ProvidersConfig{
		Text: []config.ProviderConfig{
			{Name: "openai", Type: "openai", SecretName: "openai_api_key"},
		},
	}

	reg, err := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, _ := reg.Get("openai")
	if p.Configured() {
		t.Error("provider without credential reports Configured() = true")
	}
}

func TestBuildRegistryPlaceholderKeyFallsBackToMock(t *testing.T) {
	cfg := config.ProvidersConfig{
		Text: []config.ProviderConfig{
			{Name: "openai", Type: "openai", APIKey: "changeme"},
		},
	}

	reg, err := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, _ := reg.Get("openai")
	if p.Configured() {
		t.Error("placeholder key treated as real credential")
	}
}

func TestBuildRegistryResolverFailureIsFatal(t *testing.T) {
	resolveErr := domain.NewDomainError("secrets.Get", domain.ErrSecretResolve, "store unreachable")
	cfg := config.ProvidersConfig{
		Text: []config.ProviderConfig{
			{Name: "openai", Type: "openai", SecretName: "openai_api_key"},
		},
	}

	_, err := BuildRegistry(context.Background(), cfg, &fakeResolver{err: resolveErr}, newTestLogger())
	if !errors.Is(err, domain.ErrSecretResolve) {
		t.Fatalf("err = %v, want ErrSecretResolve", err)
	}
}

func TestBuildRegistryResolvedSecretBuildsRealProvider(t *testing.T) {
	cfg := config.ProvidersConfig{
		Text: []config.ProviderConfig{
			{Name: "anthropic", Type: "anthropic", SecretName: "anthropic_api_key"},
		},
	}
	resolver := &fakeResolver{values: map[string]string{"anthropic_api_key": "sk-ant-123"}}

	reg, err := BuildRegistry(context.Background(), cfg, resolver, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, _ := reg.Get("anthropic")
	if !p.Configured() {
		t.Error("provider with resolved secret reports Configured() = false")
	}
}

func TestBuildRegistryDefaultSelection(t *testing.T) {
	cfg := config.ProvidersConfig{
		MockMode:    true,
		DefaultText: "second",
		Text: []config.ProviderConfig{
			{Name: "first", Type: "openai"},
			{Name: "second", Type: "anthropic"},
		},
	}

	reg, err := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, err := reg.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if p.Name() != "second" {
		t.Errorf("default = %q, want second", p.Name())
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	cfg := config.ProvidersConfig{
		MockMode: true,
		Text:     []config.ProviderConfig{{Name: "a", Type: "openai"}},
	}
	reg, _ := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())

	_, err := reg.Get("nope")
	if !errors.Is(err, domain.ErrProviderNotFound) {
		t.Fatalf("err = %v, want ErrProviderNotFound", err)
	}
}

func TestBuildRegistryWrapsWithBreaker(t *testing.T) {
	cfg := config.ProvidersConfig{
		MockMode:       true,
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: true},
		Text:           []config.ProviderConfig{{Name: "a", Type: "openai"}},
	}

	reg, err := BuildRegistry(context.Background(), cfg, &fakeResolver{}, newTestLogger())
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}

	p, _ := reg.Get("a")
	if p.Name() != "a" {
		t.Errorf("Name = %q", p.Name())
	}
	if _, err := p.Generate(context.Background(), domain.GenerateRequest{Prompt: "x"}); err != nil {
		t.Fatalf("Generate through breaker: %v", err)
	}
}
