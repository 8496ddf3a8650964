package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Pipeline  PipelineConfig
	Scraper   ScraperConfig
	LLM       LLMConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"`
}

// PipelineConfig holds the tunables of the comparison pipeline
type PipelineConfig struct {
	MatchThreshold     int           `mapstructure:"match_threshold"`
	AdapterTimeout     time.Duration `mapstructure:"adapter_timeout"`
	Workers            int           `mapstructure:"workers"`
	MaxResults         int           `mapstructure:"max_results"`
	MaxListingsPerSite int           `mapstructure:"max_listings_per_site"`
}

// ScraperConfig holds retailer page client configuration
type ScraperConfig struct {
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	UserAgents        []string      `mapstructure:"user_agents"`
}

// LLMConfig holds language provider configuration
type LLMConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Providers       []string      `mapstructure:"providers"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	AnthropicModel  string        `mapstructure:"anthropic_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	InterpretationTTL time.Duration `mapstructure:"interpretation_ttl"` // 0 disables the memo
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

var knownProviders = map[string]bool{"gemini": true, "claude": true}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescout/")

	v.SetEnvPrefix("PRICESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Nested keys are only picked up from the environment when bound explicitly
	for _, key := range []string{
		"server.port", "server.environment", "server.allowed_origins", "server.static_dir",
		"pipeline.match_threshold", "pipeline.adapter_timeout", "pipeline.workers",
		"pipeline.max_results", "pipeline.max_listings_per_site",
		"scraper.request_timeout", "scraper.max_attempts", "scraper.requests_per_second", "scraper.burst",
		"llm.enabled", "llm.providers", "llm.gemini_api_key", "llm.gemini_model",
		"llm.anthropic_api_key", "llm.anthropic_model", "llm.timeout",
		"cache.interpretation_ttl", "ratelimit.per_ip", "ratelimit.burst",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	applyProviderKeyFallbacks(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.static_dir", "")

	v.SetDefault("pipeline.match_threshold", 60)
	v.SetDefault("pipeline.adapter_timeout", "60s")
	v.SetDefault("pipeline.workers", 5)
	v.SetDefault("pipeline.max_results", 20)
	v.SetDefault("pipeline.max_listings_per_site", 10)

	v.SetDefault("scraper.request_timeout", "30s")
	v.SetDefault("scraper.max_attempts", 3)
	v.SetDefault("scraper.requests_per_second", 1.0)
	v.SetDefault("scraper.burst", 3)
	v.SetDefault("scraper.user_agents", defaultUserAgents)

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.providers", []string{"gemini", "claude"})
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.timeout", "15s")

	v.SetDefault("cache.interpretation_ttl", "0s")

	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// applyProviderKeyFallbacks picks up the provider SDKs' conventional key variables
func applyProviderKeyFallbacks(config *Config) {
	if config.LLM.GeminiAPIKey == "" {
		config.LLM.GeminiAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if config.LLM.GeminiAPIKey == "" {
		config.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if config.LLM.AnthropicAPIKey == "" {
		config.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// validate validates the configuration
func validate(config *Config) error {
	p := config.Pipeline
	if p.MatchThreshold <= 0 || p.MatchThreshold > 100 {
		return fmt.Errorf("match threshold must be between 1 and 100, got: %d", p.MatchThreshold)
	}
	if p.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter timeout must be positive, got: %s", p.AdapterTimeout)
	}
	if p.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got: %d", p.Workers)
	}
	if p.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got: %d", p.MaxResults)
	}

	if config.Scraper.MaxAttempts <= 0 {
		return fmt.Errorf("scraper max attempts must be positive, got: %d", config.Scraper.MaxAttempts)
	}

	for _, name := range config.LLM.Providers {
		if !knownProviders[name] {
			return fmt.Errorf("unknown llm provider %q (want gemini or claude)", name)
		}
	}

	if config.Cache.InterpretationTTL < 0 {
		return fmt.Errorf("interpretation cache TTL must not be negative, got: %s", config.Cache.InterpretationTTL)
	}

	return nil
}
