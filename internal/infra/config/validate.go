package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

var validPositions = map[string]bool{
	"top": true, "bottom": true, "both": true,
}

var validTextProviderTypes = map[string]bool{
	"openai": true, "anthropic": true, "bedrock": true, "mock": true,
}

// Validate checks a loaded configuration for invalid values.
func Validate(cfg *Config) error {
	if !validLogLevels[cfg.Logger.Level] {
		return fmt.Errorf("invalid logger level %q", cfg.Logger.Level)
	}
	if cfg.Logger.Format != "" && cfg.Logger.Format != "text" && cfg.Logger.Format != "json" {
		return fmt.Errorf("invalid logger format %q", cfg.Logger.Format)
	}
	if !validPositions[cfg.Compliance.Position] {
		return fmt.Errorf("invalid compliance position %q (want top, bottom, or both)", cfg.Compliance.Position)
	}
	if cfg.Server.RequestsPerMin <= 0 {
		return fmt.Errorf("server requests_per_min must be positive, got %d", cfg.Server.RequestsPerMin)
	}
	if cfg.Server.Burst <= 0 {
		return fmt.Errorf("server burst must be positive, got %d", cfg.Server.Burst)
	}

	names := map[string]bool{}
	for _, p := range cfg.Providers.Text {
		if p.Name == "" {
			return fmt.Errorf("text provider with empty name")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate text provider name %q", p.Name)
		}
		names[p.Name] = true
		if !validTextProviderTypes[p.Type] {
			return fmt.Errorf("text provider %s: unknown type %q", p.Name, p.Type)
		}
	}

	if cfg.Reports.Enabled && cfg.Reports.Schedule == "" {
		return fmt.Errorf("reports enabled but schedule is empty")
	}
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger path is empty")
	}
	return nil
}
