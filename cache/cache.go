// Package cache owns the translation cache-entry lifecycle: lookup,
// validation, write and expiry-driven cleanup.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/store"
)

// Entry is an alias to the persisted cache document type.
type Entry = kieli.CacheEntry

// Manager owns cache entries stored under a path prefix. It is the only
// component that mutates them. The store underneath enforces no expiry
// of its own; all freshness decisions happen here.
type Manager struct {
	store     store.Store
	prefix    string
	ttl       time.Duration
	legacyTTL time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefix overrides the storage path prefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		m.prefix = prefix
	}
}

// WithLegacyTTL sets the age cutoff applied to entries that predate
// expiry tracking, judged by the store's own last-modified time.
func WithLegacyTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.legacyTTL = ttl
	}
}

// WithLogger sets the logger used for cleanup and read-failure noise.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a cache manager writing entries with the given TTL.
func NewManager(st store.Store, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		prefix:    "cache/translations/",
		ttl:       ttl,
		legacyTTL: ttl,
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// path maps a cache key to its stored document path.
func (m *Manager) path(key kieli.Key) string {
	return m.prefix + key.String() + ".json"
}

// Lookup reads the entry at key and validates it against the request's
// source paragraphs. Absence, an expired entry, a fingerprint mismatch
// and a read failure all count as a miss; a mismatched entry is left in
// place for cleanup rather than deleted, keeping Lookup side-effect-free.
func (m *Manager) Lookup(ctx context.Context, key kieli.Key, paragraphs []string) (*Entry, bool) {
	path := m.path(key)

	data, _, err := m.store.Get(ctx, path)
	if err != nil {
		if err != store.ErrNotFound {
			m.logger.Warn("cache read failed, treating as miss", "path", path, "error", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.logger.Warn("cache entry corrupt, treating as miss", "path", path, "error", err)
		return nil, false
	}

	if !entry.ExpiresAt.IsZero() && !m.now().UTC().Before(entry.ExpiresAt) {
		m.logger.Debug("cache entry expired", "path", path)
		return nil, false
	}

	if entry.ParagraphHash != kieli.HashParagraphs(paragraphs) {
		m.logger.Debug("paragraph hash mismatch", "path", path)
		return nil, false
	}

	m.logger.Info("cache hit", "path", path)
	return &entry, true
}

// Store computes the fingerprint and writes a complete entry at key,
// unconditionally overwriting any prior entry. Last writer wins.
func (m *Manager) Store(ctx context.Context, key kieli.Key, paragraphs, translations []string) (*Entry, error) {
	if len(translations) != len(paragraphs) {
		return nil, &kieli.CacheError{
			Message: "refusing to store partial entry: translation count does not match paragraph count",
		}
	}

	now := m.now().UTC()
	entry := &Entry{
		ArticleID:     key.ArticleID,
		SourceLang:    key.SourceLang,
		TargetLang:    key.TargetLang,
		Paragraphs:    paragraphs,
		Translations:  translations,
		ParagraphHash: kieli.HashParagraphs(paragraphs),
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
		TTLHours:      m.ttl.Hours(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, &kieli.CacheError{Message: "encoding cache entry", Cause: err}
	}

	path := m.path(key)
	if err := m.store.Put(ctx, path, data); err != nil {
		return nil, &kieli.CacheError{Message: "writing cache entry", Cause: err}
	}

	m.logger.Info("saved translation cache entry", "path", path)
	return entry, nil
}

// CleanupExpired deletes every entry under the prefix whose expiry has
// passed. Entries that predate expiry tracking are judged by the
// store's last-modified time against the legacy TTL; entries whose age
// the store cannot report are kept. Failures on individual entries are
// logged and skipped so that cleanup never aborts a request. Returns
// the number of entries deleted.
func (m *Manager) CleanupExpired(ctx context.Context) int {
	paths, err := m.store.List(ctx, m.prefix)
	if err != nil {
		m.logger.Warn("cache cleanup list failed", "prefix", m.prefix, "error", err)
		return 0
	}

	now := m.now().UTC()
	cleaned := 0

	for _, path := range paths {
		if !strings.HasSuffix(path, ".json") {
			continue
		}

		data, meta, err := m.store.Get(ctx, path)
		if err != nil {
			m.logger.Warn("cache cleanup read failed, skipping", "path", path, "error", err)
			continue
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			m.logger.Warn("cache cleanup decode failed, skipping", "path", path, "error", err)
			continue
		}

		expired := false
		switch {
		case !entry.ExpiresAt.IsZero():
			expired = !now.Before(entry.ExpiresAt)
		case !meta.LastModified.IsZero():
			expired = now.Sub(meta.LastModified) > m.legacyTTL
		}

		if !expired {
			continue
		}

		if err := m.store.Delete(ctx, path); err != nil {
			m.logger.Warn("cache cleanup delete failed, skipping", "path", path, "error", err)
			continue
		}
		cleaned++
		m.logger.Debug("deleted expired cache entry", "path", path)
	}

	if cleaned > 0 {
		m.logger.Info("cleaned up expired cache entries", "count", cleaned)
	}
	return cleaned
}

// TTL returns the freshness window applied to new entries.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Verify Manager implements the orchestrator's cache contract
var _ kieli.TranslationCache = (*Manager)(nil)
