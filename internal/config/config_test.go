package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.False(t, cfg.LLM.DiscoverEmail)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.Google.BaseURL)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxSecondary)
	assert.Equal(t, 1000, cfg.Fetch.HostSpacingMS)
	assert.Equal(t, int64(2<<20), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, 20, cfg.Source.RadiusMiles)
	assert.Equal(t, 25, cfg.Source.MaxResults)
	assert.Equal(t, 2000, cfg.Source.PageDelayMS)
	assert.Equal(t, 500, cfg.Source.DetailDelayMS)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, 500, cfg.Pipeline.LeadDelayMS)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500, cfg.Retry.InitialBackoffMS)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.DatabaseURL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leadgen
log:
  level: debug
  format: console
llm:
  provider: anthropic
fetch:
  relevant_paths: ["/about", "/staff"]
pipeline:
  concurrency: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leadgen", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, []string{"/about", "/staff"}, cfg.Fetch.RelevantPaths)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 25, cfg.Source.MaxResults)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("LEADGEN_STORE_DRIVER", "none")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")
	t.Setenv("LEADGEN_OPENAI_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.OpenAI.Key)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEADGEN_GOOGLE_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEADGEN_GOOGLE_KEY") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Google.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.LLM.Provider = ProviderOpenAI
	cfg.Pipeline.Concurrency = 1
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateEnrich(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")
	assert.NotContains(t, err.Error(), "google.key")

	cfg.OpenAI.Key = "sk-key"
	assert.NoError(t, cfg.Validate("enrich"))
}

func TestValidateEnrich_OtherProviders(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Provider = ProviderGemini
	cfg.OpenAI.Key = "sk-key"

	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.key is required")

	cfg.Gemini.Key = "g-key"
	assert.NoError(t, cfg.Validate("enrich"))
	assert.Equal(t, "g-key", cfg.LLMKey())

	cfg.LLM.Provider = "mistral"
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestValidateGenerate(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key is required")
	assert.NotContains(t, err.Error(), "openai.key")

	cfg.Google.Key = "maps-key"
	assert.NoError(t, cfg.Validate("generate"))
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")
	assert.Contains(t, err.Error(), "google.key is required")

	cfg.OpenAI.Key = "sk"
	cfg.Google.Key = "maps"
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateUnknownModeChecksNothingRequired(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("categories"))
}
