package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s

aggregator:
  timeout: 20s
  max_workers: 5

providers:
  newsapi:
    key: news-key
  guardian:
    key: guardian-key
  nytimes:
    key: nyt-key
    rate_delay: 10s
    cache_ttl: 10m
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":9090", listen)
		assert.Equal(t, 45*time.Second, timeout)

		aggTimeout, maxWorkers := cfg.GetAggregatorConfig()
		assert.Equal(t, 20*time.Second, aggTimeout)
		assert.Equal(t, 5, maxWorkers)

		providers := cfg.GetProviders()
		assert.Equal(t, "news-key", providers.NewsAPI.Key)
		assert.Equal(t, "guardian-key", providers.Guardian.Key)
		assert.Equal(t, "nyt-key", providers.NYTimes.Key)
		assert.Equal(t, 10*time.Second, providers.NYTimes.RateDelay)
		assert.Equal(t, 10*time.Minute, providers.NYTimes.CacheTTL)
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeConfig(t, `
providers:
  newsapi:
    key: news-key
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":8080", listen)
		assert.Equal(t, 30*time.Second, timeout)

		aggTimeout, maxWorkers := cfg.GetAggregatorConfig()
		assert.Equal(t, 15*time.Second, aggTimeout)
		assert.Equal(t, 3, maxWorkers)

		providers := cfg.GetProviders()
		assert.Equal(t, 6*time.Second, providers.NYTimes.RateDelay)
		assert.Equal(t, 5*time.Minute, providers.NYTimes.CacheTTL)
	})

	t.Run("environment variable expansion", func(t *testing.T) {
		t.Setenv("TEST_NEWSHUB_KEY", "expanded-secret")
		path := writeConfig(t, `
providers:
  guardian:
    key: ${TEST_NEWSHUB_KEY}
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "expanded-secret", cfg.GetProviders().Guardian.Key)
	})

	t.Run("conventional env fallback for keys", func(t *testing.T) {
		t.Setenv("NEWSAPI_API_KEY", "env-news")
		t.Setenv("GUARDIAN_API_KEY", "env-guardian")
		t.Setenv("NYTIMES_API_KEY", "env-nyt")
		path := writeConfig(t, `
server:
  listen: ":8080"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		providers := cfg.GetProviders()
		assert.Equal(t, "env-news", providers.NewsAPI.Key)
		assert.Equal(t, "env-guardian", providers.Guardian.Key)
		assert.Equal(t, "env-nyt", providers.NYTimes.Key)
	})

	t.Run("explicit key wins over env fallback", func(t *testing.T) {
		t.Setenv("NEWSAPI_API_KEY", "env-news")
		path := writeConfig(t, `
providers:
  newsapi:
    key: file-key
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.GetProviders().NewsAPI.Key)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "server:\n  listen: [broken")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("server timeout too small", func(t *testing.T) {
		path := writeConfig(t, `
server:
  timeout: 500ms
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server timeout must be at least 1 second")
	})

	t.Run("aggregator timeout too small", func(t *testing.T) {
		path := writeConfig(t, `
aggregator:
  timeout: 100ms
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "aggregator timeout must be at least 1 second")
	})

	t.Run("negative max workers", func(t *testing.T) {
		path := writeConfig(t, `
aggregator:
  max_workers: -1
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_workers must be at least 1")
	})

	t.Run("negative nytimes rate delay", func(t *testing.T) {
		path := writeConfig(t, `
providers:
  nytimes:
    rate_delay: -5s
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_delay must be non-negative")
	})
}

func TestConfig_Secrets(t *testing.T) {
	t.Run("collects configured keys", func(t *testing.T) {
		cfg := &Config{}
		cfg.Providers.NewsAPI.Key = "key-one"
		cfg.Providers.NYTimes.Key = "key-two"

		secrets := cfg.Secrets()
		assert.Equal(t, []string{"key-one", "key-two"}, secrets)
	})

	t.Run("empty keys skipped", func(t *testing.T) {
		cfg := &Config{}
		assert.Empty(t, cfg.Secrets())
	})
}
