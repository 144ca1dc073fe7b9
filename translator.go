package kieli

import (
	"context"
	"log/slog"
	"time"
)

// TranslationProvider is the capability boundary to an external
// translation backend: fallible, rate-limited, billed per character.
type TranslationProvider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// TranslationCache is the contract the orchestrator requires from a
// cache manager. Lookup misses on absence, expiry, fingerprint mismatch
// and read failure alike; Store writes complete entries only.
type TranslationCache interface {
	Lookup(ctx context.Context, key Key, paragraphs []string) (*CacheEntry, bool)
	Store(ctx context.Context, key Key, paragraphs, translations []string) (*CacheEntry, error)
	CleanupExpired(ctx context.Context) int
}

// RateLimiter is the contract the orchestrator requires from a daily
// rate limiter. Check fails closed: a limiter that cannot read its
// counter denies the call.
type RateLimiter interface {
	Check(ctx context.Context, function string, dailyLimit int) bool
	Increment(ctx context.Context, function string) error
	DailyCount(ctx context.Context, function string) int
}

// Translator coordinates one translation request: cleanup, cache
// lookup, quota check, per-paragraph backend calls, cache write and
// counter increment, in that order.
type Translator struct {
	provider    TranslationProvider
	cache       TranslationCache
	limiter     RateLimiter
	dailyLimit  int
	function    string
	parallelism int
	logger      *slog.Logger
	now         func() time.Time
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache. Without one every request is a
// miss and nothing is stored.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLimiter sets the daily rate limiter and the per-day call budget.
// Without one backend calls are unmetered.
func WithLimiter(limiter RateLimiter, dailyLimit int) TranslatorOption {
	return func(t *Translator) {
		t.limiter = limiter
		t.dailyLimit = dailyLimit
	}
}

// WithFunctionName sets the counter scope name charged per request.
func WithFunctionName(name string) TranslatorOption {
	return func(t *Translator) {
		t.function = name
	}
}

// WithParallelism sets the number of concurrent backend calls used for
// large paragraph batches. Values below 2 keep translation sequential.
func WithParallelism(n int) TranslatorOption {
	return func(t *Translator) {
		t.parallelism = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a Translator around a translation provider.
func NewTranslator(provider TranslationProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:   provider,
		dailyLimit: DefaultDailyLimit,
		function:   "translate_article",
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate handles one request end to end.
//
// A cache hit returns immediately and consumes no quota. On a miss the
// limiter gates the backend call; denial surfaces as
// *QuotaExceededError without touching the backend. Paragraphs are
// all-or-nothing: any terminal backend failure fails the request with
// no cache write and no counter increment. On full success the entry
// is stored before the counter is incremented, so a crash between the
// two under-counts usage rather than over-counting it.
func (t *Translator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	if req.SourceLang == "" {
		req.SourceLang = DefaultSourceLang
	}
	if req.TargetLang == "" {
		req.TargetLang = DefaultTargetLang
	}

	key := Key{ArticleID: req.ArticleID, SourceLang: req.SourceLang, TargetLang: req.TargetLang}
	log := t.logger.With("article_id", req.ArticleID, "source_lang", req.SourceLang, "target_lang", req.TargetLang)

	if len(req.Paragraphs) == 0 {
		return &TranslateResult{
			ArticleID:    req.ArticleID,
			SourceLang:   req.SourceLang,
			TargetLang:   req.TargetLang,
			Translations: []string{},
			TranslatedAt: t.now().UTC(),
		}, nil
	}

	if t.cache != nil {
		t.cache.CleanupExpired(ctx)

		if entry, ok := t.cache.Lookup(ctx, key, req.Paragraphs); ok {
			log.Info("serving cached translation")
			return &TranslateResult{
				ArticleID:    req.ArticleID,
				SourceLang:   req.SourceLang,
				TargetLang:   req.TargetLang,
				Translations: entry.Translations,
				CacheHit:     true,
				CachedAt:     entry.CreatedAt,
				TranslatedAt: entry.CreatedAt,
			}, nil
		}
	}

	if t.limiter != nil {
		if !t.limiter.Check(ctx, t.function, t.dailyLimit) {
			count := t.limiter.DailyCount(ctx, t.function)
			log.Warn("daily quota exceeded", "function", t.function, "count", count, "limit", t.dailyLimit)
			return nil, &QuotaExceededError{
				Function:     t.function,
				CurrentCount: count,
				DailyLimit:   t.dailyLimit,
			}
		}
	}

	translations, err := t.translateAll(ctx, req.Paragraphs, req.SourceLang, req.TargetLang)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if _, err := t.cache.Store(ctx, key, req.Paragraphs, translations); err != nil {
			// Cache is best-effort: the translation still goes out.
			log.Warn("cache write failed", "error", err)
		}
	}

	if t.limiter != nil {
		if err := t.limiter.Increment(ctx, t.function); err != nil {
			log.Error("counter increment failed", "function", t.function, "error", err)
		}
	}

	log.Info("translated article", "paragraphs", len(req.Paragraphs))
	return &TranslateResult{
		ArticleID:    req.ArticleID,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		Translations: translations,
		TranslatedAt: t.now().UTC(),
	}, nil
}

// translateAll translates every paragraph, preserving order. A failure
// on any paragraph fails the whole batch.
func (t *Translator) translateAll(ctx context.Context, paragraphs []string, sourceLang, targetLang string) ([]string, error) {
	if t.parallelism > 1 && len(paragraphs) >= parallelThreshold {
		return t.translateParallel(ctx, paragraphs, sourceLang, targetLang)
	}

	translations := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out, err := t.provider.Translate(ctx, p, sourceLang, targetLang)
		if err != nil {
			return nil, err
		}
		translations[i] = out
	}
	return translations, nil
}

// FunctionName returns the counter scope charged per request.
func (t *Translator) FunctionName() string {
	return t.function
}

// DailyLimit returns the per-day backend call budget.
func (t *Translator) DailyLimit() int {
	return t.dailyLimit
}
