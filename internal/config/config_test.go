package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RADAR_AI_API_KEY", "")
}

func TestLoadWithFileOverrides(t *testing.T) {
	clearKeyEnv(t)

	path := writeConfig(t, `
server:
  port: 9090
  request_timeout_seconds: 90
auth:
  enabled: true
  api_key: secret
fetcher:
  user_agent: test-agent
  timeout_seconds: 5
ai:
  api_key: sk-file
  model: gpt-4.1-mini
  max_retries: 2
  request_timeout_seconds: 30
reports:
  cache_size: 8
storage:
  backend: gcs
  gcs_bucket: radar-archive
  prefix: archive
pubsub:
  backend: pubsub
  project_id: proj
  topic_name: radar
logging:
  development: false
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "secret", cfg.Auth.APIKey)
	require.Equal(t, "test-agent", cfg.Fetcher.UserAgent)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout())
	require.Equal(t, "sk-file", cfg.AI.APIKey)
	require.Equal(t, "gpt-4.1-mini", cfg.AI.Model)
	require.Equal(t, 2, cfg.AI.MaxRetries)
	require.Equal(t, 30*time.Second, cfg.AIRequestTimeout())
	require.Equal(t, 90*time.Second, cfg.RequestTimeout())
	require.Equal(t, 8, cfg.Reports.CacheSize)
	require.Equal(t, BackendGCS, cfg.Storage.Backend)
	require.Equal(t, "radar-archive", cfg.Storage.GCSBucket)
	require.Equal(t, "archive", cfg.Storage.Prefix)
	require.Equal(t, "application/json", cfg.Storage.ContentType)
	require.Equal(t, BackendPubSub, cfg.PubSub.Backend)
	require.False(t, cfg.Logging.Development)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadDefaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
	require.Contains(t, cfg.Fetcher.UserAgent, "CompetitorRadar/1.0")
	require.Equal(t, "sk-env", cfg.AI.APIKey)
	require.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.Zero(t, cfg.AI.MaxRetries)
	require.Zero(t, cfg.AIRequestTimeout())
	require.Equal(t, 256, cfg.Reports.CacheSize)
	require.Equal(t, BackendNone, cfg.Storage.Backend)
	require.Equal(t, BackendNone, cfg.PubSub.Backend)
	require.Equal(t, "radar-reports", cfg.PubSub.TopicName)
	require.True(t, cfg.Logging.Development)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("RADAR_AI_API_KEY", "sk-radar")
	t.Setenv("RADAR_SERVER_PORT", "7070")
	t.Setenv("RADAR_FETCHER_TIMEOUT_SECONDS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-radar", cfg.AI.APIKey)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 3*time.Second, cfg.FetchTimeout())
}

func TestLoadRequiresAIKey(t *testing.T) {
	clearKeyEnv(t)

	_, err := Load("")
	require.ErrorContains(t, err, "ai.api_key")
}

func TestLoadMissingFile(t *testing.T) {
	clearKeyEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:  ServerConfig{Port: 8080},
		Fetcher: FetcherConfig{UserAgent: "ua", TimeoutSeconds: 15},
		AI:      AIConfig{APIKey: "sk"},
		Reports: ReportsConfig{CacheSize: 1},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid fetch timeout", mutate: func(c *Config) { c.Fetcher.TimeoutSeconds = 0 }, want: "fetcher.timeout_seconds"},
		{name: "blank user agent", mutate: func(c *Config) { c.Fetcher.UserAgent = " " }, want: "fetcher.user_agent"},
		{name: "missing ai key", mutate: func(c *Config) { c.AI.APIKey = "" }, want: "ai.api_key"},
		{name: "negative retries", mutate: func(c *Config) { c.AI.MaxRetries = -1 }, want: "ai.max_retries"},
		{name: "negative ai timeout", mutate: func(c *Config) { c.AI.RequestTimeoutSeconds = -1 }, want: "ai.request_timeout_seconds"},
		{name: "empty cache", mutate: func(c *Config) { c.Reports.CacheSize = 0 }, want: "reports.cache_size"},
		{name: "auth missing api key", mutate: func(c *Config) { c.Auth.Enabled = true }, want: "auth.api_key"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Storage.Backend = BackendGCS }, want: "storage.gcs_bucket"},
		{name: "local without dir", mutate: func(c *Config) { c.Storage.Backend = BackendLocal }, want: "storage.local_dir"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Backend = "s3" }, want: "storage.backend"},
		{name: "pubsub without project", mutate: func(c *Config) { c.PubSub = PubSubConfig{Backend: BackendPubSub, TopicName: "t"} }, want: "pubsub.project_id"},
		{name: "memory pubsub without topic", mutate: func(c *Config) { c.PubSub.Backend = BackendMemory }, want: "pubsub.topic_name"},
		{name: "unknown pubsub", mutate: func(c *Config) { c.PubSub.Backend = "kafka" }, want: "pubsub.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.want), "got %v", err)
		})
	}
}
