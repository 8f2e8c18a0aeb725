package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Aggregator struct {
		Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-source request timeout"`
		MaxWorkers int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=3,description=Maximum concurrent source requests"`
	} `yaml:"aggregator" json:"aggregator" jsonschema:"description=Aggregation pipeline configuration"`

	Providers ProvidersConfig `yaml:"providers" json:"providers" jsonschema:"description=Upstream news provider configuration"`
}

// ProvidersConfig holds per-provider settings. A provider with an empty key
// is skipped entirely; the aggregation continues with the remaining sources.
type ProvidersConfig struct {
	NewsAPI  ProviderConfig `yaml:"newsapi" json:"newsapi" jsonschema:"description=NewsAPI settings"`
	Guardian ProviderConfig `yaml:"guardian" json:"guardian" jsonschema:"description=The Guardian settings"`
	NYTimes  NYTimesConfig  `yaml:"nytimes" json:"nytimes" jsonschema:"description=The New York Times settings"`
}

// ProviderConfig holds common provider settings
type ProviderConfig struct {
	Key string `yaml:"key" json:"key" jsonschema:"description=API key (can use environment variable)"`
}

// NYTimesConfig holds settings for the rate-limited NYTimes provider
type NYTimesConfig struct {
	Key       string        `yaml:"key" json:"key" jsonschema:"description=API key (can use environment variable)"`
	RateDelay time.Duration `yaml:"rate_delay" json:"rate_delay" jsonschema:"default=6s,description=Minimum delay between requests (provider allows ~10/minute)"`
	CacheTTL  time.Duration `yaml:"cache_ttl" json:"cache_ttl" jsonschema:"default=5m,description=How long identical query results are cached"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for aggregator
	if cfg.Aggregator.Timeout == 0 {
		cfg.Aggregator.Timeout = 15 * time.Second
	}
	if cfg.Aggregator.MaxWorkers == 0 {
		cfg.Aggregator.MaxWorkers = 3
	}

	// provider keys fall back to the conventional environment variables
	if cfg.Providers.NewsAPI.Key == "" {
		cfg.Providers.NewsAPI.Key = os.Getenv("NEWSAPI_API_KEY")
	}
	if cfg.Providers.Guardian.Key == "" {
		cfg.Providers.Guardian.Key = os.Getenv("GUARDIAN_API_KEY")
	}
	if cfg.Providers.NYTimes.Key == "" {
		cfg.Providers.NYTimes.Key = os.Getenv("NYTIMES_API_KEY")
	}

	// set defaults for the rate-limited provider
	if cfg.Providers.NYTimes.RateDelay == 0 {
		cfg.Providers.NYTimes.RateDelay = 6 * time.Second
	}
	if cfg.Providers.NYTimes.CacheTTL == 0 {
		cfg.Providers.NYTimes.CacheTTL = 5 * time.Minute
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate aggregator config
	if cfg.Aggregator.Timeout < time.Second {
		return fmt.Errorf("aggregator timeout must be at least 1 second")
	}
	if cfg.Aggregator.MaxWorkers < 1 {
		return fmt.Errorf("aggregator max_workers must be at least 1")
	}

	// validate nytimes throttle settings
	if cfg.Providers.NYTimes.RateDelay < 0 {
		return fmt.Errorf("nytimes rate_delay must be non-negative")
	}
	if cfg.Providers.NYTimes.CacheTTL < 0 {
		return fmt.Errorf("nytimes cache_ttl must be non-negative")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetAggregatorConfig returns aggregation pipeline configuration
func (c *Config) GetAggregatorConfig() (timeout time.Duration, maxWorkers int) {
	return c.Aggregator.Timeout, c.Aggregator.MaxWorkers
}

// GetProviders returns upstream provider configuration
func (c *Config) GetProviders() ProvidersConfig {
	return c.Providers
}

// Secrets returns all configured API keys for log masking
func (c *Config) Secrets() []string {
	var secrets []string
	for _, key := range []string{c.Providers.NewsAPI.Key, c.Providers.Guardian.Key, c.Providers.NYTimes.Key} {
		if key != "" {
			secrets = append(secrets, key)
		}
	}
	return secrets
}
