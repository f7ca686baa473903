// Package config loads and validates radar configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names for the report archive and the hand-off publisher.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendGCS    = "gcs"
	BackendPubSub = "pubsub"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Fetcher FetcherConfig `mapstructure:"fetcher"`
	AI      AIConfig      `mapstructure:"ai"`
	Reports ReportsConfig `mapstructure:"reports"`
	Storage StorageConfig `mapstructure:"storage"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// FetcherConfig governs how sites are fetched.
type FetcherConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AIConfig configures the OpenAI client.
type AIConfig struct {
	APIKey                string `mapstructure:"api_key"`
	BaseURL               string `mapstructure:"base_url"`
	Model                 string `mapstructure:"model"`
	MaxRetries            int    `mapstructure:"max_retries"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

// ReportsConfig sizes the in-process report cache.
type ReportsConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// StorageConfig selects where finished reports are archived.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	LocalDir    string `mapstructure:"local_dir"`
	Prefix      string `mapstructure:"prefix"`
	ContentType string `mapstructure:"content_type"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	Backend   string `mapstructure:"backend"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", "RADAR_AI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind ai.api_key: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 180)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("fetcher.user_agent", "CompetitorRadar/1.0 (+https://github.com/JakeFAU/competitor-radar)")
	v.SetDefault("fetcher.timeout_seconds", 15)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_retries", 0)
	v.SetDefault("ai.request_timeout_seconds", 0)
	v.SetDefault("reports.cache_size", 256)
	v.SetDefault("storage.backend", BackendNone)
	v.SetDefault("storage.local_dir", "reports")
	v.SetDefault("storage.prefix", "reports")
	v.SetDefault("storage.content_type", "application/json")
	v.SetDefault("pubsub.backend", BackendNone)
	v.SetDefault("pubsub.topic_name", "radar-reports")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		return errors.New("server.request_timeout_seconds must be >= 0")
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return errors.New("fetcher.timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Fetcher.UserAgent) == "" {
		return errors.New("fetcher.user_agent must be set")
	}
	if c.AI.APIKey == "" {
		return errors.New("ai.api_key must be set (or OPENAI_API_KEY)")
	}
	if c.AI.MaxRetries < 0 {
		return errors.New("ai.max_retries must be >= 0")
	}
	if c.AI.RequestTimeoutSeconds < 0 {
		return errors.New("ai.request_timeout_seconds must be >= 0")
	}
	if c.Reports.CacheSize <= 0 {
		return errors.New("reports.cache_size must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return errors.New("auth.api_key must be set when auth is enabled")
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.PubSub.validate()
}

func (s StorageConfig) validate() error {
	switch s.Backend {
	case "", BackendNone, BackendMemory:
		return nil
	case BackendLocal:
		if s.LocalDir == "" {
			return errors.New("storage.local_dir must be set for the local backend")
		}
		return nil
	case BackendGCS:
		if s.GCSBucket == "" {
			return errors.New("storage.gcs_bucket must be set for the gcs backend")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend %q is not one of none, memory, local, gcs", s.Backend)
	}
}

func (p PubSubConfig) validate() error {
	switch p.Backend {
	case "", BackendNone:
		return nil
	case BackendMemory:
		if p.TopicName == "" {
			return errors.New("pubsub.topic_name must be set")
		}
		return nil
	case BackendPubSub:
		if p.ProjectID == "" || p.TopicName == "" {
			return errors.New("pubsub.project_id and pubsub.topic_name must be set for the pubsub backend")
		}
		return nil
	default:
		return fmt.Errorf("pubsub.backend %q is not one of none, memory, pubsub", p.Backend)
	}
}

// FetchTimeout returns the per-site fetch timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetcher.TimeoutSeconds) * time.Second
}

// AIRequestTimeout returns the per-call AI timeout; zero disables it.
func (c Config) AIRequestTimeout() time.Duration {
	return time.Duration(c.AI.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout bounds one HTTP request to the API; zero disables it.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
