package kieli

import "time"

// TranslateRequest identifies one unit of content to translate.
type TranslateRequest struct {
	ArticleID  string   // Stable content-scope identifier (e.g. feed item id)
	SourceLang string   // Source language code (default: "fi")
	TargetLang string   // Target language code (default: "en")
	Paragraphs []string // Ordered plain-text paragraphs, the exact input translated
}

// TranslateResult is the outcome of a translation request.
type TranslateResult struct {
	ArticleID    string
	SourceLang   string
	TargetLang   string
	Translations []string  // One per input paragraph, same order
	CacheHit     bool      // Whether the result was served from cache
	CachedAt     time.Time // When the cached entry was created (zero on miss)
	TranslatedAt time.Time // When the translations were produced
}

// CacheEntry is the persisted translation cache document. An entry is
// either fully present or absent; partial-paragraph entries are never
// written.
type CacheEntry struct {
	ArticleID     string    `json:"article_id"`
	SourceLang    string    `json:"source_lang"`
	TargetLang    string    `json:"target_lang"`
	Paragraphs    []string  `json:"paragraphs"`
	Translations  []string  `json:"translations"`
	ParagraphHash string    `json:"paragraph_hash"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	TTLHours      float64   `json:"cache_ttl_hours"`
}

// QuotaSnapshot is a point-in-time view of billed translation usage.
type QuotaSnapshot struct {
	UsedCharacters     int64     `json:"total_characters_used"`
	LimitCharacters    int64     `json:"quota_limit"`
	RemainingQuota     int64     `json:"remaining_quota"`
	PercentageUsed     float64   `json:"percentage_used"`
	BillingPeriodStart time.Time `json:"billing_period_start"`
	BillingPeriodEnd   time.Time `json:"billing_period_end"`
	NextResetTime      time.Time `json:"next_reset_time"`
}

// Defaults used when configuration is absent.
const (
	// DefaultSourceLang is the source language assumed for news content.
	DefaultSourceLang = "fi"
	// DefaultTargetLang is the target language assumed for readers.
	DefaultTargetLang = "en"
	// DefaultCacheTTL is how long translation cache entries stay fresh.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultDailyLimit caps billed backend calls per function per UTC day.
	DefaultDailyLimit = 50
	// DefaultQuotaLimit is the billed character allowance per billing period.
	DefaultQuotaLimit = 2_000_000
)
