// Package config loads and validates the ftcguard YAML configuration,
// applies FTCGUARD_* environment overrides, and decrypts "enc:"-prefixed
// secret values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Reports    ReportsConfig    `yaml:"reports"`
	Secrets    SecretsConfig    `yaml:"secrets"`
}

// ServerConfig holds HTTP gateway settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	RequestsPerMin int      `yaml:"requests_per_min"`
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// ComplianceConfig holds disclosure injection settings.
type ComplianceConfig struct {
	AutoInject bool `yaml:"auto_inject"`
	// Position is "top", "bottom", or "both".
	Position string `yaml:"position"`
	// CustomDisclosures overrides the default disclosure wording per
	// content type ("blog", "video", "social").
	CustomDisclosures map[string]string `yaml:"custom_disclosures,omitempty"`
}

// ProvidersConfig holds external provider settings.
type ProvidersConfig struct {
	// MockMode forces every provider into mock mode; no secret resolution
	// or network construction happens when it is set.
	MockMode       bool                 `yaml:"mock_mode"`
	DefaultText    string               `yaml:"default_text"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Text           []ProviderConfig     `yaml:"text"`
	Voice          ProviderConfig       `yaml:"voice"`
	Affiliate      AffiliateConfig      `yaml:"affiliate"`
	Publish        ProviderConfig       `yaml:"publish"`
}

// CircuitBreakerConfig holds circuit breaker settings for provider calls.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings for provider clients.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ProviderConfig holds settings for a single external provider.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`
	// APIKey may be a literal value or an "enc:" encrypted value; when
	// empty the secrets resolver is consulted using SecretName.
	APIKey      string        `yaml:"api_key,omitempty"`
	SecretName  string        `yaml:"secret_name,omitempty"`
	Model       string        `yaml:"model,omitempty"`
	Region      string        `yaml:"region,omitempty"`
	VoiceID     string        `yaml:"voice_id,omitempty"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// AffiliateConfig holds affiliate product search settings.
type AffiliateConfig struct {
	ProviderConfig `yaml:",inline"`
	PartnerTag     string `yaml:"partner_tag,omitempty"`
}

// LedgerConfig holds cost/validation ledger settings.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// ReportsConfig holds scheduled compliance report settings.
type ReportsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression
	// Window is how far back the report looks, e.g. "24h".
	Window time.Duration `yaml:"window"`
}

// SecretsConfig holds secret store settings.
type SecretsConfig struct {
	// File is an optional YAML secret store path (0600 permissions).
	File string `yaml:"file,omitempty"`
}

// defaultDataDir returns the persistent data directory under
// $HOME/.ftcguard. Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".ftcguard")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8380",
			RequestsPerMin: 120,
			Burst:          20,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
		Compliance: ComplianceConfig{
			AutoInject: true,
			Position:   "bottom",
		},
		Providers: ProvidersConfig{
			DefaultText: "openai",
			CircuitBreaker: CircuitBreakerConfig{
				Enabled: true,
			},
			// Without a key this falls back to mock at startup, so a
			// bare install still serves every endpoint.
			Text: []ProviderConfig{
				{Name: "openai", Type: "openai", Model: "gpt-4o-mini"},
			},
		},
		Ledger: LedgerConfig{
			Path: filepath.Join(defaultDataDir(), "ledger.db"),
		},
		Reports: ReportsConfig{
			Schedule: "0 6 * * *",
			Window:   24 * time.Hour,
		},
	}
}

// Load reads a YAML config file, applies env var overrides, and decrypts
// secrets. A missing file is not an error; defaults plus env overrides
// are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	passphrase := os.Getenv("FTCGUARD_CONFIG_KEY")
	if passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps FTCGUARD_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FTCGUARD_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FTCGUARD_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("FTCGUARD_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("FTCGUARD_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("FTCGUARD_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("FTCGUARD_MOCK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Providers.MockMode = b
		}
	}
	if v := os.Getenv("FTCGUARD_DEFAULT_TEXT_PROVIDER"); v != "" {
		cfg.Providers.DefaultText = v
	}
	if v := os.Getenv("FTCGUARD_LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("FTCGUARD_SECRETS_FILE"); v != "" {
		cfg.Secrets.File = v
	}
	if v := os.Getenv("FTCGUARD_REPORTS_SCHEDULE"); v != "" {
		cfg.Reports.Schedule = v
	}
	if v := os.Getenv("FTCGUARD_COMPLIANCE_AUTO_INJECT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compliance.AutoInject = b
		}
	}
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable).
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
