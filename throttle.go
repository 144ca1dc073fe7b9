package kieli

import (
	"context"
	"sync"
	"time"
)

// Throttle smooths the rate of backend requests using a token bucket.
// It is a local, in-process guard against bursts; the daily quota is
// enforced separately by DailyLimiter.
type Throttle struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// ThrottleConfig configures the token bucket.
type ThrottleConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewThrottle creates a new token bucket throttle.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &Throttle{
		tokens:     burst, // Start with full bucket
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	for {
		if t.TryAcquire() {
			return nil
		}

		t.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / t.refillRate)
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (t *Throttle) TryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()

	if t.tokens >= 1 {
		t.tokens--
		return true
	}

	return false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (t *Throttle) refill() {
	now := time.Now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	t.lastRefill = now

	t.tokens += elapsed * t.refillRate
	if t.tokens > t.maxTokens {
		t.tokens = t.maxTokens
	}
}

// Available returns the current number of available tokens.
func (t *Throttle) Available() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refill()
	return t.tokens
}

// ThrottledProvider wraps a TranslationProvider with a token bucket.
type ThrottledProvider struct {
	provider TranslationProvider
	throttle *Throttle
}

// NewThrottledProvider creates a new throttled provider.
func NewThrottledProvider(provider TranslationProvider, cfg ThrottleConfig) *ThrottledProvider {
	return &ThrottledProvider{
		provider: provider,
		throttle: NewThrottle(cfg),
	}
}

// Translate implements TranslationProvider with request smoothing.
func (p *ThrottledProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return "", &ProviderError{
			Kind:    KindUnknown,
			Message: "throttle wait cancelled",
			Cause:   err,
		}
	}

	return p.provider.Translate(ctx, text, sourceLang, targetLang)
}

// Throttle returns the underlying token bucket for inspection.
func (p *ThrottledProvider) Throttle() *Throttle {
	return p.throttle
}

// Verify ThrottledProvider implements TranslationProvider
var _ TranslationProvider = (*ThrottledProvider)(nil)
