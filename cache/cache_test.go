package cache

import (
	"context"
	"testing"
	"time"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/store"
)

func TestManager_StoreAndLookup(t *testing.T) {
	manager := NewManager(store.NewMemStore(), 24*time.Hour)
	ctx := context.Background()

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}
	paragraphs := []string{"Moi", "Terve"}
	translations := []string{"Hi", "Hello"}

	stored, err := manager.Store(ctx, key, paragraphs, translations)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if stored.ParagraphHash != kieli.HashParagraphs(paragraphs) {
		t.Error("Stored entry should carry the paragraph fingerprint")
	}
	if !stored.ExpiresAt.Equal(stored.CreatedAt.Add(24 * time.Hour)) {
		t.Errorf("Expected expiry 24h after creation, got %v", stored.ExpiresAt)
	}

	entry, ok := manager.Lookup(ctx, key, paragraphs)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if len(entry.Translations) != 2 || entry.Translations[0] != "Hi" {
		t.Errorf("Unexpected translations: %v", entry.Translations)
	}
}

func TestManager_LookupMisses(t *testing.T) {
	st := store.NewMemStore()
	manager := NewManager(st, 24*time.Hour)
	ctx := context.Background()

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}
	paragraphs := []string{"Moi"}

	// Absent entry
	if _, ok := manager.Lookup(ctx, key, paragraphs); ok {
		t.Error("Lookup of absent entry should miss")
	}

	if _, err := manager.Store(ctx, key, paragraphs, []string{"Hi"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Fingerprint mismatch
	if _, ok := manager.Lookup(ctx, key, []string{"Moi!"}); ok {
		t.Error("Lookup with changed paragraphs should miss")
	}

	// Different language pair
	other := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "sv"}
	if _, ok := manager.Lookup(ctx, other, paragraphs); ok {
		t.Error("Lookup for another language pair should miss")
	}

	// Corrupt document
	if err := st.Put(ctx, "cache/translations/art-2/fi_en.json", []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	corrupt := kieli.Key{ArticleID: "art-2", SourceLang: "fi", TargetLang: "en"}
	if _, ok := manager.Lookup(ctx, corrupt, paragraphs); ok {
		t.Error("Lookup of corrupt entry should miss")
	}
}

func TestManager_LookupExpired(t *testing.T) {
	manager := NewManager(store.NewMemStore(), 24*time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return base }

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}
	paragraphs := []string{"Moi"}

	if _, err := manager.Store(ctx, key, paragraphs, []string{"Hi"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Just inside the window
	manager.now = func() time.Time { return base.Add(24*time.Hour - time.Second) }
	if _, ok := manager.Lookup(ctx, key, paragraphs); !ok {
		t.Error("Entry should still be fresh just inside the TTL")
	}

	// Exactly at expiry counts as expired
	manager.now = func() time.Time { return base.Add(24 * time.Hour) }
	if _, ok := manager.Lookup(ctx, key, paragraphs); ok {
		t.Error("Entry should be expired at the expiry instant")
	}
}

func TestManager_StoreRejectsPartial(t *testing.T) {
	manager := NewManager(store.NewMemStore(), 24*time.Hour)

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}
	_, err := manager.Store(context.Background(), key, []string{"Moi", "Terve"}, []string{"Hi"})
	if err == nil {
		t.Fatal("Store should reject a partial entry")
	}

	if _, ok := err.(*kieli.CacheError); !ok {
		t.Errorf("Expected *kieli.CacheError, got %T", err)
	}
}

func TestManager_StoreOverwrites(t *testing.T) {
	manager := NewManager(store.NewMemStore(), 24*time.Hour)
	ctx := context.Background()

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}

	if _, err := manager.Store(ctx, key, []string{"Moi"}, []string{"Hi"}); err != nil {
		t.Fatalf("First Store failed: %v", err)
	}
	if _, err := manager.Store(ctx, key, []string{"Terve"}, []string{"Hello"}); err != nil {
		t.Fatalf("Second Store failed: %v", err)
	}

	if _, ok := manager.Lookup(ctx, key, []string{"Moi"}); ok {
		t.Error("Overwritten entry should no longer match the old paragraphs")
	}
	entry, ok := manager.Lookup(ctx, key, []string{"Terve"})
	if !ok {
		t.Fatal("Expected hit for the latest write")
	}
	if entry.Translations[0] != "Hello" {
		t.Errorf("Expected latest translation 'Hello', got %q", entry.Translations[0])
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	st := store.NewMemStore()
	manager := NewManager(st, 24*time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return base }

	fresh := kieli.Key{ArticleID: "fresh", SourceLang: "fi", TargetLang: "en"}
	stale := kieli.Key{ArticleID: "stale", SourceLang: "fi", TargetLang: "en"}

	if _, err := manager.Store(ctx, fresh, []string{"Moi"}, []string{"Hi"}); err != nil {
		t.Fatal(err)
	}

	manager.now = func() time.Time { return base.Add(-48 * time.Hour) }
	if _, err := manager.Store(ctx, stale, []string{"Terve"}, []string{"Hello"}); err != nil {
		t.Fatal(err)
	}
	manager.now = func() time.Time { return base }

	cleaned := manager.CleanupExpired(ctx)
	if cleaned != 1 {
		t.Errorf("Expected 1 cleaned entry, got %d", cleaned)
	}

	if _, ok := manager.Lookup(ctx, fresh, []string{"Moi"}); !ok {
		t.Error("Fresh entry should survive cleanup")
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 remaining object, got %d", st.Len())
	}

	// Cleanup is idempotent
	if cleaned := manager.CleanupExpired(ctx); cleaned != 0 {
		t.Errorf("Second cleanup should delete nothing, got %d", cleaned)
	}
}

func TestManager_CleanupLegacyEntries(t *testing.T) {
	st := store.NewMemStore()
	manager := NewManager(st, 24*time.Hour, WithLegacyTTL(24*time.Hour))
	ctx := context.Background()

	// An entry written before expiry tracking: no expires_at field.
	legacy := `{"article_id":"old","source_lang":"fi","target_lang":"en","paragraphs":["Moi"],"translations":["Hi"]}`
	path := "cache/translations/old/fi_en.json"
	if err := st.Put(ctx, path, []byte(legacy)); err != nil {
		t.Fatal(err)
	}
	st.SetModTime(path, time.Now().UTC().Add(-48*time.Hour))

	cleaned := manager.CleanupExpired(ctx)
	if cleaned != 1 {
		t.Errorf("Expected legacy entry cleaned by age, got %d", cleaned)
	}
}

func TestManager_CleanupSkipsCorrupt(t *testing.T) {
	st := store.NewMemStore()
	manager := NewManager(st, 24*time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "cache/translations/bad.json", []byte("{broken")); err != nil {
		t.Fatal(err)
	}

	if cleaned := manager.CleanupExpired(ctx); cleaned != 0 {
		t.Errorf("Corrupt entries should be skipped, got %d deletions", cleaned)
	}
	if st.Len() != 1 {
		t.Error("Corrupt entry should be left in place")
	}
}

func TestManager_WithPrefix(t *testing.T) {
	st := store.NewMemStore()
	manager := NewManager(st, time.Hour, WithPrefix("alt/cache"))
	ctx := context.Background()

	key := kieli.Key{ArticleID: "art-1", SourceLang: "fi", TargetLang: "en"}
	if _, err := manager.Store(ctx, key, []string{"Moi"}, []string{"Hi"}); err != nil {
		t.Fatal(err)
	}

	paths, err := st.List(ctx, "alt/cache/")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("Expected entry under alt/cache/, got %v", paths)
	}
}
