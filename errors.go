package kieli

import "fmt"

// ErrorKind classifies translation backend failures.
type ErrorKind int

const (
	// KindUnknown is an unclassified backend failure.
	KindUnknown ErrorKind = iota
	// KindRateLimited means the backend reported too many requests.
	KindRateLimited
	// KindUnauthorized means the backend rejected the credentials.
	KindUnauthorized
	// KindTransient is a network error, timeout or 5xx server error.
	KindTransient
	// KindInvalidLanguage means the backend rejected a language code.
	KindInvalidLanguage
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransient:
		return "transient"
	case KindInvalidLanguage:
		return "invalid_language"
	default:
		return "unknown"
	}
}

// ProviderError indicates a translation backend failure.
type ProviderError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is worth retrying.
// Rate limiting and transient network conditions are; credential and
// language errors are not.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// CacheError indicates a cache read or write failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// QuotaExceededError is returned when the daily limit for a function has
// been reached, or when the limiter fails closed. It is a distinguished
// denial, not an internal failure: callers map it to a "too many
// requests" outward signal.
type QuotaExceededError struct {
	Function     string
	CurrentCount int
	DailyLimit   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota exceeded for %s: %d/%d", e.Function, e.CurrentCount, e.DailyLimit)
}

// MeteringError indicates a usage-metering query failure. It only ever
// reaches the quota reporter's caller; translation never depends on it.
type MeteringError struct {
	Message string
	Cause   error
}

func (e *MeteringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("metering error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("metering error: %s", e.Message)
}

func (e *MeteringError) Unwrap() error {
	return e.Cause
}
