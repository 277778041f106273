package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LLM provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects the completion provider.
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	DiscoverEmail bool   `yaml:"discover_email" mapstructure:"discover_email"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleConfig holds Google Maps Platform settings.
type GoogleConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures website retrieval.
type FetchConfig struct {
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxSecondary  int      `yaml:"max_secondary_pages" mapstructure:"max_secondary_pages"`
	HostSpacingMS int      `yaml:"host_spacing_ms" mapstructure:"host_spacing_ms"`
	RelevantPaths []string `yaml:"relevant_paths" mapstructure:"relevant_paths"`
}

// SourceConfig configures lead generation defaults.
type SourceConfig struct {
	RadiusMiles   int `yaml:"radius_miles" mapstructure:"radius_miles"`
	MaxResults    int `yaml:"max_results" mapstructure:"max_results"`
	PageDelayMS   int `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	DetailDelayMS int `yaml:"detail_delay_ms" mapstructure:"detail_delay_ms"`
}

// PipelineConfig configures batch processing.
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	LeadDelayMS int `yaml:"lead_delay_ms" mapstructure:"lead_delay_ms"`
}

// RetryConfig configures retries of transient LLM and Google API failures.
// MaxAttempts 1 disables them.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMS     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RedisConfig configures the optional search and enrichment cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so that AutomaticEnv can see it during
	// Unmarshal.
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.discover_email", false)
	v.SetDefault("openai.key", "")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.max_body_bytes", 2<<20)
	v.SetDefault("fetch.max_secondary_pages", 3)
	v.SetDefault("fetch.host_spacing_ms", 1000)
	v.SetDefault("fetch.relevant_paths", []string{})
	v.SetDefault("source.radius_miles", 20)
	v.SetDefault("source.max_results", 25)
	v.SetDefault("source.page_delay_ms", 2000)
	v.SetDefault("source.detail_delay_ms", 500)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.lead_delay_ms", 500)
	v.SetDefault("retry.max_attempts", 1)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadgen.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// LLMKey returns the API key of the selected provider.
func (c *Config) LLMKey() string {
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderAnthropic:
		return c.Anthropic.Key
	case ProviderGemini:
		return c.Gemini.Key
	default:
		return c.OpenAI.Key
	}
}

// Validate checks the keys required by a command mode: "enrich", "generate"
// or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	needLLM := mode == "enrich" || mode == "serve"
	needGoogle := mode == "generate" || mode == "serve"

	if needLLM {
		switch p := strings.ToLower(c.LLM.Provider); p {
		case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
			if c.LLMKey() == "" {
				errs = append(errs, p+".key is required")
			}
		default:
			errs = append(errs, "llm.provider must be one of openai, anthropic, gemini (got \""+c.LLM.Provider+"\")")
		}
	}
	if needGoogle && c.Google.Key == "" {
		errs = append(errs, "google.key is required")
	}
	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Pipeline.Concurrency < 0 {
		errs = append(errs, "pipeline.concurrency must not be negative")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
