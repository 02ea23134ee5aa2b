package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8380", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Compliance.AutoInject)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftcguard.yaml")
	data := `
logger:
  level: debug
providers:
  mock_mode: true
  text:
    - name: openai
      type: openai
      model: gpt-4o-mini
compliance:
  position: both
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Providers.MockMode)
	require.Len(t, cfg.Providers.Text, 1)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.Text[0].Model)
	assert.Equal(t, "both", cfg.Compliance.Position)
}

func TestLoadRejectsInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftcguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: info\n"), 0o600))
	require.NoError(t, os.Chmod(path, 0o666))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure permissions")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FTCGUARD_LOGGER_LEVEL", "warn")
	t.Setenv("FTCGUARD_MOCK_MODE", "true")
	t.Setenv("FTCGUARD_SERVER_ADDR", ":9999")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.True(t, cfg.Providers.MockMode)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := EncryptValue("sk-secret-value", "passphrase")
	require.NoError(t, err)
	assert.NotContains(t, enc, "sk-secret-value")

	dec, err := DecryptValue(enc, "passphrase")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", dec)

	_, err = DecryptValue(enc, "wrong-passphrase")
	assert.Error(t, err)
}

func TestLoadDecryptsProviderKeys(t *testing.T) {
	enc, err := EncryptValue("sk-live-key", "k1")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "ftcguard.yaml")
	data := "providers:\n  text:\n    - name: openai\n      type: openai\n      api_key: \"enc:" + enc + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("FTCGUARD_CONFIG_KEY", "k1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-key", cfg.Providers.Text[0].APIKey)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logger.Level = "loud" }},
		{"bad position", func(c *Config) { c.Compliance.Position = "middle" }},
		{"zero rate", func(c *Config) { c.Server.RequestsPerMin = 0 }},
		{"unknown provider type", func(c *Config) {
			c.Providers.Text = []ProviderConfig{{Name: "x", Type: "quantum"}}
		}},
		{"duplicate provider", func(c *Config) {
			c.Providers.Text = []ProviderConfig{
				{Name: "a", Type: "openai"}, {Name: "a", Type: "anthropic"},
			}
		}},
		{"empty ledger path", func(c *Config) { c.Ledger.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
