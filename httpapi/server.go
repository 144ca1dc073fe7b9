// Package httpapi exposes the translation engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/uutislabs/kieli"
)

// ctxKey is the private type for request-scoped context values.
type ctxKey int

const identityKey ctxKey = iota

// Server wires the orchestrator, quota reporter and rate limiter into
// an HTTP handler.
type Server struct {
	translator *kieli.Translator
	reporter   *kieli.QuotaReporter
	limiter    kieli.RateLimiter
	limits     map[string]int
	auth       Authorizer
	logger     *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithQuotaReporter enables the quota endpoint.
func WithQuotaReporter(reporter *kieli.QuotaReporter) ServerOption {
	return func(s *Server) {
		s.reporter = reporter
	}
}

// WithRateLimits enables the rate-limit query endpoint for the given
// function budgets.
func WithRateLimits(limiter kieli.RateLimiter, limits map[string]int) ServerOption {
	return func(s *Server) {
		s.limiter = limiter
		s.limits = limits
	}
}

// WithAuthorizer sets the request authorizer.
func WithAuthorizer(auth Authorizer) ServerOption {
	return func(s *Server) {
		s.auth = auth
	}
}

// WithServerLogger sets the logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an API server around a translator.
func NewServer(translator *kieli.Translator, opts ...ServerOption) *Server {
	s := &Server{
		translator: translator,
		auth:       AllowAll{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLog)
	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/api/translate-article", s.handleTranslate)
		r.Get("/api/translator-quota", s.handleQuota)
		r.Get("/api/rate-limits", s.handleRateLimits)
	})

	return r
}

// requestLog assigns a request id and logs each request on completion.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// requireAuth rejects requests the authorizer does not vouch for. The
// 401 body leaks nothing about internal state.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.auth.Authorize(r)
		if !ok {
			s.logger.Warn("authentication failed", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// translateRequest is the inbound translation payload.
type translateRequest struct {
	ArticleID  string   `json:"article_id"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
	Paragraphs []string `json:"paragraphs"`
}

// translateResponse is the outbound translation payload.
type translateResponse struct {
	ArticleID    string     `json:"article_id"`
	SourceLang   string     `json:"source_lang"`
	TargetLang   string     `json:"target_lang"`
	Translations []string   `json:"translations"`
	CacheHit     bool       `json:"cache_hit"`
	CachedAt     *time.Time `json:"cached_at,omitempty"`
	TranslatedAt time.Time  `json:"translated_at"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body required"})
		return
	}
	if req.ArticleID == "" || len(req.Paragraphs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "article_id and paragraphs required"})
		return
	}

	result, err := s.translator.Translate(r.Context(), kieli.TranslateRequest{
		ArticleID:  req.ArticleID,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Paragraphs: req.Paragraphs,
	})
	if err != nil {
		s.writeTranslateError(w, err)
		return
	}

	resp := translateResponse{
		ArticleID:    result.ArticleID,
		SourceLang:   result.SourceLang,
		TargetLang:   result.TargetLang,
		Translations: result.Translations,
		CacheHit:     result.CacheHit,
		TranslatedAt: result.TranslatedAt,
	}
	if result.CacheHit {
		cachedAt := result.CachedAt
		resp.CachedAt = &cachedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeTranslateError maps engine failures to distinguishable outward
// signals: quota denial, backend unavailability and terminal backend
// errors each read differently to a retrying caller.
func (s *Server) writeTranslateError(w http.ResponseWriter, err error) {
	var quotaErr *kieli.QuotaExceededError
	if errors.As(err, &quotaErr) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":         "Rate limit exceeded",
			"current_count": quotaErr.CurrentCount,
			"daily_limit":   quotaErr.DailyLimit,
		})
		return
	}

	var providerErr *kieli.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.Kind {
		case kieli.KindRateLimited, kieli.KindTransient:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Translation backend unavailable"})
		case kieli.KindInvalidLanguage:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported language pair"})
		default:
			s.logger.Error("translation failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Translation failed"})
		}
		return
	}

	s.logger.Error("translation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Quota reporting not configured"})
		return
	}

	snapshot, err := s.reporter.Report(r.Context())
	if err != nil {
		s.logger.Error("quota report failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to query quota"})
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// rateLimitStatus is one function's daily usage.
type rateLimitStatus struct {
	Date           string  `json:"date"`
	RequestCount   int     `json:"request_count"`
	DailyLimit     int     `json:"daily_limit"`
	Remaining      int     `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

func (s *Server) handleRateLimits(w http.ResponseWriter, r *http.Request) {
	if s.limiter == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Rate limit reporting not configured"})
		return
	}

	date := time.Now().UTC().Format("2006-01-02")

	if name := r.URL.Query().Get("function_name"); name != "" {
		limit, ok := s.limits[name]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown function: " + name})
			return
		}
		writeJSON(w, http.StatusOK, s.limitStatus(r.Context(), name, limit, date))
		return
	}

	results := make(map[string]rateLimitStatus, len(s.limits))
	for name, limit := range s.limits {
		results[name] = s.limitStatus(r.Context(), name, limit, date)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) limitStatus(ctx context.Context, function string, limit int, date string) rateLimitStatus {
	count := s.limiter.DailyCount(ctx, function)
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	percentage := 0.0
	if limit > 0 {
		percentage = float64(count) / float64(limit) * 100
	}
	return rateLimitStatus{
		Date:           date,
		RequestCount:   count,
		DailyLimit:     limit,
		Remaining:      remaining,
		PercentageUsed: percentage,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": kieli.Version})
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Identity returns the authorized caller identity from a request
// context, if any.
func Identity(ctx context.Context) string {
	id, _ := ctx.Value(identityKey).(string)
	return id
}
