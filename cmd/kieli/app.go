package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/cache"
	"github.com/uutislabs/kieli/config"
	"github.com/uutislabs/kieli/metering"
	"github.com/uutislabs/kieli/provider"
	"github.com/uutislabs/kieli/store"
)

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// buildStore constructs the configured object store backend.
func buildStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "file", "":
		return store.NewFileStore(cfg.Store.Path)
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			URL:       cfg.Store.RedisURL,
			KeyPrefix: cfg.Store.RedisPrefix,
		})
	case "memory":
		return store.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildProvider constructs the translation backend with its wrappers:
// circuit breaker (optional), token-bucket throttle, then retry.
func buildProvider(cfg config.Config) (kieli.TranslationProvider, error) {
	p, err := provider.New(provider.Config{
		Backend: provider.Backend(cfg.Provider.Backend),
		Azure: provider.AzureConfig{
			Key:      cfg.Provider.Azure.Key,
			Endpoint: cfg.Provider.Azure.Endpoint,
			Region:   cfg.Provider.Azure.Region,
		},
		OpenAI: provider.OpenAIConfig{
			APIKey: cfg.Provider.OpenAI.APIKey,
			Model:  cfg.Provider.OpenAI.Model,
		},
	})
	if err != nil {
		return nil, err
	}

	if cfg.Provider.Breaker.Enabled {
		p = provider.NewBreakerProvider(p, provider.BreakerConfig{
			ConsecutiveFailures: uint32(cfg.Provider.Breaker.ConsecutiveFailures),
			OpenTimeout:         time.Duration(cfg.Provider.Breaker.OpenTimeoutSeconds) * time.Second,
		})
	}

	if cfg.Translation.RequestsPerMinute > 0 {
		p = kieli.NewThrottledProvider(p, kieli.ThrottleConfig{
			RequestsPerMinute: cfg.Translation.RequestsPerMinute,
		})
	}

	return kieli.NewRetryableProvider(p, kieli.DefaultRetryConfig()), nil
}

// buildTranslator wires the full engine from configuration.
func buildTranslator(cfg config.Config, logger *slog.Logger) (*kieli.Translator, *kieli.DailyLimiter, store.Store, error) {
	st, err := buildStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	ttl := time.Duration(cfg.Translation.CacheTTLHours) * time.Hour
	manager := cache.NewManager(st, ttl, cache.WithLogger(logger))
	limiter := kieli.NewDailyLimiter(st, kieli.WithLimiterLogger(logger))

	translator := kieli.NewTranslator(p,
		kieli.WithCache(manager),
		kieli.WithLimiter(limiter, cfg.Translation.DailyLimit),
		kieli.WithParallelism(cfg.Translation.Parallelism),
		kieli.WithLogger(logger),
	)

	return translator, limiter, st, nil
}

// buildReporter wires the quota reporter when metering is configured.
// Returns nil when it is not; the rest of the engine works without it.
func buildReporter(cfg config.Config) (*kieli.QuotaReporter, error) {
	if cfg.Quota.ResourceID == "" {
		return nil, nil
	}

	token := os.Getenv("AZURE_MONITOR_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("AZURE_MONITOR_TOKEN required for quota reporting")
	}

	meter, err := metering.NewAzureMonitorMeter(metering.Config{
		ResourceID: cfg.Quota.ResourceID,
		Token:      metering.StaticToken(token),
	})
	if err != nil {
		return nil, err
	}

	return kieli.NewQuotaReporter(meter, cfg.Quota.LimitCharacters,
		kieli.WithBillingCycleStartDay(cfg.Quota.BillingCycleStartDay),
		kieli.WithSnapshotFreshness(time.Duration(cfg.Quota.SnapshotFreshnessHours)*time.Hour),
	), nil
}
