package kieli

import (
	"context"
	"math"
	"sync"
	"time"
)

// UsageMeter is the external usage-metering capability: how many billed
// characters the translation backend consumed over a window.
type UsageMeter interface {
	CharactersTranslated(ctx context.Context, from, to time.Time) (int64, error)
}

// QuotaReporter derives remaining-quota statistics from a usage meter.
// It is read-only and independent of the translation hot path; a
// metering failure is reportable but never blocks translation. Results
// are cached in memory for a freshness window to keep metering queries
// infrequent.
type QuotaReporter struct {
	meter    UsageMeter
	limit    int64
	startDay int
	freshFor time.Duration
	now      func() time.Time

	mu        sync.Mutex
	cached    *QuotaSnapshot
	fetchedAt time.Time
}

// QuotaReporterOption configures a QuotaReporter.
type QuotaReporterOption func(*QuotaReporter)

// WithBillingCycleStartDay sets the day of month the billing period
// starts on. Clamped to 1..28 so every month has the day.
func WithBillingCycleStartDay(day int) QuotaReporterOption {
	return func(r *QuotaReporter) {
		if day < 1 {
			day = 1
		}
		if day > 28 {
			day = 28
		}
		r.startDay = day
	}
}

// WithSnapshotFreshness sets how long a fetched snapshot is reused
// before the meter is queried again.
func WithSnapshotFreshness(d time.Duration) QuotaReporterOption {
	return func(r *QuotaReporter) {
		r.freshFor = d
	}
}

// NewQuotaReporter creates a reporter for a billed character limit.
func NewQuotaReporter(meter UsageMeter, limit int64, opts ...QuotaReporterOption) *QuotaReporter {
	r := &QuotaReporter{
		meter:    meter,
		limit:    limit,
		startDay: 1,
		freshFor: 4 * time.Hour,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Report returns usage statistics for the current billing period,
// serving a cached snapshot while it is fresh.
func (r *QuotaReporter) Report(ctx context.Context) (*QuotaSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if r.cached != nil && now.Sub(r.fetchedAt) < r.freshFor {
		snapshot := *r.cached
		return &snapshot, nil
	}

	start := billingPeriodStart(now, r.startDay)
	used, err := r.meter.CharactersTranslated(ctx, start, now)
	if err != nil {
		return nil, &MeteringError{Message: "querying translated characters", Cause: err}
	}

	remaining := r.limit - used
	if remaining < 0 {
		remaining = 0
	}

	percentage := 0.0
	if r.limit > 0 {
		percentage = math.Round(float64(used)/float64(r.limit)*100*100) / 100
	}

	snapshot := &QuotaSnapshot{
		UsedCharacters:     used,
		LimitCharacters:    r.limit,
		RemainingQuota:     remaining,
		PercentageUsed:     percentage,
		BillingPeriodStart: start,
		BillingPeriodEnd:   now,
		NextResetTime:      nextBillingReset(now, r.startDay),
	}

	r.cached = snapshot
	r.fetchedAt = now

	out := *snapshot
	return &out, nil
}

// billingPeriodStart returns the first instant of the billing period
// containing now, for a period starting on startDay of each month.
func billingPeriodStart(now time.Time, startDay int) time.Time {
	start := time.Date(now.Year(), now.Month(), startDay, 0, 0, 0, 0, time.UTC)
	if start.After(now) {
		start = start.AddDate(0, -1, 0)
	}
	return start
}

// nextBillingReset returns the first instant of the next billing period.
func nextBillingReset(now time.Time, startDay int) time.Time {
	return billingPeriodStart(now, startDay).AddDate(0, 1, 0)
}
