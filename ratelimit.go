package kieli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uutislabs/kieli/store"
)

// rateCounter is the persisted per-function, per-day counter document.
type rateCounter struct {
	FunctionName string    `json:"function_name"`
	Date         string    `json:"date"`
	Count        int       `json:"count"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

// DailyLimiter owns per-function daily counters. A counter's scope is
// (function name, UTC calendar day); a new day implies a fresh scope,
// so there is no explicit reset. Increments are read-modify-write
// without coordination: a rare race costs a slight overcount, which the
// design tolerates at this scale.
type DailyLimiter struct {
	store  store.Store
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// DailyLimiterOption configures a DailyLimiter.
type DailyLimiterOption func(*DailyLimiter)

// WithCounterPrefix overrides the storage path prefix for counters.
func WithCounterPrefix(prefix string) DailyLimiterOption {
	return func(l *DailyLimiter) {
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		l.prefix = prefix
	}
}

// WithLimiterLogger sets the logger.
func WithLimiterLogger(logger *slog.Logger) DailyLimiterOption {
	return func(l *DailyLimiter) {
		l.logger = logger
	}
}

// NewDailyLimiter creates a limiter persisting counters in st.
func NewDailyLimiter(st store.Store, opts ...DailyLimiterOption) *DailyLimiter {
	l := &DailyLimiter{
		store:  st,
		prefix: "ratelimits/",
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// dateKey returns today's scope date in UTC.
func (l *DailyLimiter) dateKey() string {
	return l.now().UTC().Format("2006-01-02")
}

func (l *DailyLimiter) path(function, date string) string {
	return l.prefix + function + "_" + date + ".json"
}

// read returns today's counter for function. Absence is count 0.
func (l *DailyLimiter) read(ctx context.Context, function string) (rateCounter, error) {
	date := l.dateKey()
	data, _, err := l.store.Get(ctx, l.path(function, date))
	if errors.Is(err, store.ErrNotFound) {
		return rateCounter{FunctionName: function, Date: date}, nil
	}
	if err != nil {
		return rateCounter{}, err
	}

	var counter rateCounter
	if err := json.Unmarshal(data, &counter); err != nil {
		return rateCounter{}, err
	}
	return counter, nil
}

// Check reports whether another billed call is allowed today.
//
// Policy: Check fails closed. When the counter store cannot be read,
// the call is denied rather than risking unmetered usage against the
// billed backend. This is deliberate and differs from a plain cache,
// where a read failure degrades to a miss.
func (l *DailyLimiter) Check(ctx context.Context, function string, dailyLimit int) bool {
	counter, err := l.read(ctx, function)
	if err != nil {
		l.logger.Error("rate counter read failed, failing closed", "function", function, "error", err)
		return false
	}

	if counter.Count >= dailyLimit {
		l.logger.Warn("daily limit reached", "function", function, "count", counter.Count, "limit", dailyLimit)
		return false
	}
	return true
}

// Increment charges one call against today's counter, creating it on
// first use of the day.
func (l *DailyLimiter) Increment(ctx context.Context, function string) error {
	counter, err := l.read(ctx, function)
	if err != nil {
		return err
	}

	now := l.now().UTC()
	if counter.Count == 0 && counter.CreatedAt.IsZero() {
		counter.CreatedAt = now
	}
	counter.Count++
	counter.LastUpdated = now

	data, err := json.MarshalIndent(counter, "", "  ")
	if err != nil {
		return err
	}

	if err := l.store.Put(ctx, l.path(function, counter.Date), data); err != nil {
		return err
	}

	l.logger.Debug("incremented daily counter", "function", function, "count", counter.Count)
	return nil
}

// DailyCount returns today's count for function. Absence and read
// failures read as 0; this accessor is for reporting, not gating.
func (l *DailyLimiter) DailyCount(ctx context.Context, function string) int {
	counter, err := l.read(ctx, function)
	if err != nil {
		l.logger.Warn("rate counter read failed", "function", function, "error", err)
		return 0
	}
	return counter.Count
}

// Sweep opportunistically deletes counters older than keepDays. Old-day
// counters are harmless, so failures are logged and skipped. Returns
// the number deleted.
func (l *DailyLimiter) Sweep(ctx context.Context, keepDays int) int {
	paths, err := l.store.List(ctx, l.prefix)
	if err != nil {
		l.logger.Warn("counter sweep list failed", "error", err)
		return 0
	}

	cutoff := l.now().UTC().AddDate(0, 0, -keepDays).Format("2006-01-02")
	swept := 0

	for _, path := range paths {
		data, _, err := l.store.Get(ctx, path)
		if err != nil {
			continue
		}

		var counter rateCounter
		if err := json.Unmarshal(data, &counter); err != nil {
			continue
		}
		if counter.Date == "" || counter.Date >= cutoff {
			continue
		}

		if err := l.store.Delete(ctx, path); err != nil {
			l.logger.Warn("counter sweep delete failed", "path", path, "error", err)
			continue
		}
		swept++
	}

	return swept
}

// Verify DailyLimiter implements the orchestrator's limiter contract
var _ RateLimiter = (*DailyLimiter)(nil)
