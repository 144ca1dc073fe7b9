package kieli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uutislabs/kieli/store"
)

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Put(ctx context.Context, path string, value []byte) error {
	return errors.New("store unavailable")
}

func (failingStore) Get(ctx context.Context, path string) ([]byte, store.Metadata, error) {
	return nil, store.Metadata{}, errors.New("store unavailable")
}

func (failingStore) Delete(ctx context.Context, path string) error {
	return errors.New("store unavailable")
}

func (failingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func TestDailyLimiter_CheckAndIncrement(t *testing.T) {
	limiter := NewDailyLimiter(store.NewMemStore())
	ctx := context.Background()

	if !limiter.Check(ctx, "translate_article", 2) {
		t.Error("Fresh counter should allow calls")
	}
	if got := limiter.DailyCount(ctx, "translate_article"); got != 0 {
		t.Errorf("Expected count 0, got %d", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Increment(ctx, "translate_article"); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	if got := limiter.DailyCount(ctx, "translate_article"); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}
	if limiter.Check(ctx, "translate_article", 2) {
		t.Error("Check should deny once the limit is reached")
	}
}

func TestDailyLimiter_PerFunctionScope(t *testing.T) {
	limiter := NewDailyLimiter(store.NewMemStore())
	ctx := context.Background()

	if err := limiter.Increment(ctx, "translate_article"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	if got := limiter.DailyCount(ctx, "translate_feed"); got != 0 {
		t.Errorf("Counters should be scoped per function, got %d", got)
	}
	if !limiter.Check(ctx, "translate_feed", 1) {
		t.Error("Other function's usage should not count against this one")
	}
}

func TestDailyLimiter_NewDayResetsScope(t *testing.T) {
	limiter := NewDailyLimiter(store.NewMemStore())
	ctx := context.Background()

	day1 := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	limiter.now = func() time.Time { return day1 }

	if err := limiter.Increment(ctx, "translate_article"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if limiter.Check(ctx, "translate_article", 1) {
		t.Error("Limit should be reached on day one")
	}

	// Ten minutes later it is a new UTC day and a fresh counter.
	limiter.now = func() time.Time { return day1.Add(10 * time.Minute) }

	if !limiter.Check(ctx, "translate_article", 1) {
		t.Error("New day should start with a fresh counter")
	}
	if got := limiter.DailyCount(ctx, "translate_article"); got != 0 {
		t.Errorf("Expected count 0 on new day, got %d", got)
	}
}

func TestDailyLimiter_FailsClosed(t *testing.T) {
	limiter := NewDailyLimiter(failingStore{})
	ctx := context.Background()

	if limiter.Check(ctx, "translate_article", 50) {
		t.Error("Check should deny when the counter store cannot be read")
	}
	if got := limiter.DailyCount(ctx, "translate_article"); got != 0 {
		t.Errorf("DailyCount should read 0 on store failure, got %d", got)
	}
	if err := limiter.Increment(ctx, "translate_article"); err == nil {
		t.Error("Increment should surface the store failure")
	}
}

func TestDailyLimiter_CorruptCounterFailsClosed(t *testing.T) {
	st := store.NewMemStore()
	limiter := NewDailyLimiter(st)
	ctx := context.Background()

	date := time.Now().UTC().Format("2006-01-02")
	if err := st.Put(ctx, "ratelimits/translate_article_"+date+".json", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	if limiter.Check(ctx, "translate_article", 50) {
		t.Error("Check should deny on a corrupt counter document")
	}
}

func TestDailyLimiter_Sweep(t *testing.T) {
	st := store.NewMemStore()
	limiter := NewDailyLimiter(st)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	old := `{"function_name":"translate_article","date":"2025-01-01","count":3}`
	recent := `{"function_name":"translate_article","date":"2025-03-09","count":1}`
	if err := st.Put(ctx, "ratelimits/translate_article_2025-01-01.json", []byte(old)); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, "ratelimits/translate_article_2025-03-09.json", []byte(recent)); err != nil {
		t.Fatal(err)
	}

	swept := limiter.Sweep(ctx, 30)
	if swept != 1 {
		t.Errorf("Expected 1 swept counter, got %d", swept)
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 remaining counter, got %d", st.Len())
	}
	if _, _, err := st.Get(ctx, "ratelimits/translate_article_2025-03-09.json"); err != nil {
		t.Errorf("Recent counter should survive the sweep: %v", err)
	}
}
