// Package config loads engine configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration surface.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	AuthToken  string `yaml:"auth_token"`

	Store       StoreConfig       `yaml:"store"`
	Provider    ProviderConfig    `yaml:"provider"`
	Translation TranslationConfig `yaml:"translation"`
	Quota       QuotaConfig       `yaml:"quota"`
}

// StoreConfig selects and configures the object store backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // "file", "redis" or "memory"
	Path        string `yaml:"path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// ProviderConfig selects and configures the translation backend.
type ProviderConfig struct {
	Backend string             `yaml:"backend"` // "azure", "openai" or "mock"
	Azure   AzureConfig        `yaml:"azure"`
	OpenAI  OpenAIConfig       `yaml:"openai"`
	Breaker BreakerConfigBlock `yaml:"breaker"`
}

// AzureConfig configures the Azure Translator backend.
type AzureConfig struct {
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
}

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// BreakerConfigBlock configures the provider circuit breaker.
type BreakerConfigBlock struct {
	Enabled             bool `yaml:"enabled"`
	ConsecutiveFailures int  `yaml:"consecutive_failures"`
	OpenTimeoutSeconds  int  `yaml:"open_timeout_seconds"`
}

// TranslationConfig tunes the translation hot path.
type TranslationConfig struct {
	SourceLang        string `yaml:"source_lang"`
	TargetLang        string `yaml:"target_lang"`
	CacheTTLHours     int    `yaml:"cache_ttl_hours"`
	DailyLimit        int    `yaml:"daily_limit"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	Parallelism       int    `yaml:"parallelism"`
}

// QuotaConfig configures the quota reporter.
type QuotaConfig struct {
	ResourceID             string `yaml:"resource_id"`
	LimitCharacters        int64  `yaml:"limit_characters"`
	BillingCycleStartDay   int    `yaml:"billing_cycle_start_day"`
	SnapshotFreshnessHours int    `yaml:"snapshot_freshness_hours"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Store: StoreConfig{
			Backend: "file",
			Path:    "./data",
		},
		Provider: ProviderConfig{
			Backend: "azure",
		},
		Translation: TranslationConfig{
			SourceLang:        "fi",
			TargetLang:        "en",
			CacheTTLHours:     24,
			DailyLimit:        50,
			RequestsPerMinute: 60,
		},
		Quota: QuotaConfig{
			LimitCharacters:        2_000_000,
			BillingCycleStartDay:   1,
			SnapshotFreshnessHours: 4,
		},
	}
}

// Load reads path (when non-empty) over the defaults and then applies
// environment overrides for secrets.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - config path is operator-provided
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv pulls secrets from the environment so they need not live in
// the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("KIELI_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("AZURE_TRANSLATOR_KEY"); v != "" {
		c.Provider.Azure.Key = v
	}
	if v := os.Getenv("AZURE_TRANSLATOR_ENDPOINT"); v != "" {
		c.Provider.Azure.Endpoint = v
	}
	if v := os.Getenv("AZURE_TRANSLATOR_REGION"); v != "" {
		c.Provider.Azure.Region = v
	}
	if v := os.Getenv("AZURE_TRANSLATOR_RESOURCE_ID"); v != "" {
		c.Quota.ResourceID = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Provider.OpenAI.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
}
