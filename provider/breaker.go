package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/uutislabs/kieli"
)

// BreakerProvider wraps a TranslationProvider with a circuit breaker so
// a struggling backend is not hammered by every incoming request. An
// open circuit surfaces as a transient provider error.
type BreakerProvider struct {
	provider TranslationProvider
	cb       *gobreaker.CircuitBreaker
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	Name                string        // Breaker name for state-change logs (default: "translator")
	ConsecutiveFailures uint32        // Failures before the circuit opens (default: 5)
	OpenTimeout         time.Duration // How long the circuit stays open (default: 30s)
}

// NewBreakerProvider creates a circuit-broken provider.
func NewBreakerProvider(provider TranslationProvider, cfg BreakerConfig) *BreakerProvider {
	name := cfg.Name
	if name == "" {
		name = "translator"
	}

	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})

	return &BreakerProvider{provider: provider, cb: cb}
}

// Translate implements TranslationProvider through the breaker.
func (p *BreakerProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return p.provider.Translate(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &kieli.ProviderError{
				Kind:    kieli.KindTransient,
				Message: "translation backend circuit open",
				Cause:   err,
			}
		}
		return "", err
	}
	return out.(string), nil
}

// State returns the current breaker state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// Verify BreakerProvider implements TranslationProvider
var _ TranslationProvider = (*BreakerProvider)(nil)
