// Package secrets resolves provider credentials from a secret store with
// environment-variable fallback.
//
// A missing secret is not an error: resolvers return an empty value so
// callers can fall back to mock mode. Only infrastructure failures (an
// unreadable store, malformed store file) surface as errors, wrapped in
// domain.ErrSecretResolve.
package secrets

import (
	"context"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ftcguard/internal/domain"
)

// Ref names one secret plus the env var consulted when the store misses.
type Ref struct {
	Name   string
	EnvVar string
}

// Resolver resolves named secrets.
type Resolver interface {
	// Get returns the secret value, or "" when it is absent everywhere.
	Get(ctx context.Context, name, envFallback string) (string, error)
	// GetAll resolves a batch of refs into a name → value map. Absent
	// secrets are omitted from the map.
	GetAll(ctx context.Context, refs []Ref) (map[string]string, error)
}

// placeholders are values that count as "not configured" even when set.
var placeholders = map[string]bool{
	"":             true,
	"changeme":     true,
	"your-api-key": true,
	"xxx":          true,
}

// IsPlaceholder reports whether v is empty or a known placeholder value.
func IsPlaceholder(v string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(v))]
}

// EnvResolver resolves secrets from environment variables only.
type EnvResolver struct{}

// NewEnvResolver creates an environment-only resolver.
func NewEnvResolver() *EnvResolver { return &EnvResolver{} }

// Get implements Resolver. The secret name itself is tried as an env var
// first, then the fallback name.
func (r *EnvResolver) Get(_ context.Context, name, envFallback string) (string, error) {
	if v := os.Getenv(name); !IsPlaceholder(v) {
		return v, nil
	}
	if envFallback != "" {
		if v := os.Getenv(envFallback); !IsPlaceholder(v) {
			return v, nil
		}
	}
	return "", nil
}

// GetAll implements Resolver.
func (r *EnvResolver) GetAll(ctx context.Context, refs []Ref) (map[string]string, error) {
	return getAll(ctx, r, refs)
}

// FileResolver resolves secrets from a flat YAML file of name: value
// pairs, falling back to environment variables.
type FileResolver struct {
	values map[string]string
}

// NewFileResolver loads the secret file at path. The file must not be
// group/world readable. A missing file yields an empty resolver rather
// than an error, so a bare env setup still works.
func NewFileResolver(path string) (*FileResolver, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileResolver{values: map[string]string{}}, nil
		}
		return nil, domain.NewDomainError("secrets.NewFileResolver", domain.ErrSecretResolve, err.Error())
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, domain.NewDomainError("secrets.NewFileResolver", domain.ErrSecretResolve,
			"secret file must not be group/world accessible")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainError("secrets.NewFileResolver", domain.ErrSecretResolve, err.Error())
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, domain.NewDomainError("secrets.NewFileResolver", domain.ErrSecretResolve, err.Error())
	}
	return &FileResolver{values: values}, nil
}

// Get implements Resolver: store first, env var fallback second.
func (r *FileResolver) Get(_ context.Context, name, envFallback string) (string, error) {
	if v := r.values[name]; !IsPlaceholder(v) {
		return v, nil
	}
	if envFallback != "" {
		if v := os.Getenv(envFallback); !IsPlaceholder(v) {
			return v, nil
		}
	}
	return "", nil
}

// GetAll implements Resolver.
func (r *FileResolver) GetAll(ctx context.Context, refs []Ref) (map[string]string, error) {
	return getAll(ctx, r, refs)
}

func getAll(ctx context.Context, r Resolver, refs []Ref) (map[string]string, error) {
	out := make(map[string]string, len(refs))
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

// Chain tries each resolver in order and returns the first hit.
// Resolver errors abort the chain immediately: an unreadable store is
// an outage, not a miss.
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a chained resolver.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Get implements Resolver.
func (c *Chain) Get(ctx context.Context, name, envFallback string) (string, error) {
	for _, r := range c.resolvers {
		v, err := r.Get(ctx, name, envFallback)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// GetAll implements Resolver.
func (c *Chain) GetAll(ctx context.Context, refs []Ref) (map[string]string, error) {
	return getAll(ctx, c, refs)
}
