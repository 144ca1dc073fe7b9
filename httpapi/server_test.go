package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uutislabs/kieli"
	"github.com/uutislabs/kieli/cache"
	"github.com/uutislabs/kieli/provider"
	"github.com/uutislabs/kieli/store"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *provider.MockProvider) {
	t.Helper()

	st := store.NewMemStore()
	mock := provider.NewMockProvider()

	translator := kieli.NewTranslator(mock,
		kieli.WithCache(cache.NewManager(st, 24*time.Hour)),
		kieli.WithLimiter(kieli.NewDailyLimiter(st), 50),
	)

	return NewServer(translator, opts...), mock
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t, WithAuthorizer(NewStaticTokenAuthorizer("secret", "")))

	rec := doJSON(t, server.Router(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Health endpoint should be public, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("Unexpected health body: %v", body)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("Expected a request id header")
	}
}

func TestServer_Auth(t *testing.T) {
	server, _ := newTestServer(t, WithAuthorizer(NewStaticTokenAuthorizer("secret", "newsroom")))
	router := server.Router()

	payload := `{"article_id":"art-1","paragraphs":["Moi"]}`

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid token", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := doJSON(t, router, http.MethodPost, "/api/translate-article", payload, headers)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_Translate(t *testing.T) {
	server, mock := newTestServer(t)
	router := server.Router()

	payload := `{"article_id":"art-1","paragraphs":["Moi","Terve"]}`

	rec := doJSON(t, router, http.MethodPost, "/api/translate-article", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CacheHit {
		t.Error("First request should not be a cache hit")
	}
	if resp.CachedAt != nil {
		t.Error("cached_at should be absent on a fresh translation")
	}
	if len(resp.Translations) != 2 || resp.Translations[0] != "Hi" || resp.Translations[1] != "Hello" {
		t.Errorf("Unexpected translations: %v", resp.Translations)
	}
	if resp.SourceLang != "fi" || resp.TargetLang != "en" {
		t.Errorf("Expected default language pair, got %s -> %s", resp.SourceLang, resp.TargetLang)
	}

	// Same payload again is served from cache.
	rec = doJSON(t, router, http.MethodPost, "/api/translate-article", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.CacheHit {
		t.Error("Second request should be a cache hit")
	}
	if resp.CachedAt == nil {
		t.Error("cached_at should be present on a hit")
	}
	if mock.CallCount() != 2 {
		t.Errorf("Backend should be called once per paragraph only, got %d calls", mock.CallCount())
	}
}

func TestServer_TranslateValidation(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "article_id=art-1"},
		{"missing article id", `{"paragraphs":["Moi"]}`},
		{"missing paragraphs", `{"article_id":"art-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/translate-article", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestServer_TranslateQuotaExceeded(t *testing.T) {
	st := store.NewMemStore()
	mock := provider.NewMockProvider()
	translator := kieli.NewTranslator(mock,
		kieli.WithLimiter(kieli.NewDailyLimiter(st), 0),
	)
	server := NewServer(translator)

	rec := doJSON(t, server.Router(), http.MethodPost, "/api/translate-article",
		`{"article_id":"art-1","paragraphs":["Moi"]}`, nil)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Rate limit exceeded" {
		t.Errorf("Unexpected error message: %v", body["error"])
	}
	if _, ok := body["daily_limit"]; !ok {
		t.Error("Response should include the daily limit")
	}
}

func TestServer_TranslateBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		kind kieli.ErrorKind
		want int
	}{
		{"transient", kieli.KindTransient, http.StatusServiceUnavailable},
		{"rate limited", kieli.KindRateLimited, http.StatusServiceUnavailable},
		{"invalid language", kieli.KindInvalidLanguage, http.StatusBadRequest},
		{"unauthorized", kieli.KindUnauthorized, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, mock := newTestServer(t)
			mock.Err = &kieli.ProviderError{Kind: tt.kind, Message: "backend failure"}

			rec := doJSON(t, server.Router(), http.MethodPost, "/api/translate-article",
				`{"article_id":"art-1","paragraphs":["Moi"]}`, nil)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_QuotaEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server.Router(), http.MethodGet, "/api/translator-quota", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Unconfigured quota endpoint should return 503, got %d", rec.Code)
	}

	meter := staticMeter(750_000)
	reporter := kieli.NewQuotaReporter(meter, 2_000_000)
	server, _ = newTestServer(t, WithQuotaReporter(reporter))

	rec = doJSON(t, server.Router(), http.MethodGet, "/api/translator-quota", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snapshot kieli.QuotaSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.UsedCharacters != 750_000 {
		t.Errorf("Expected 750000 used, got %d", snapshot.UsedCharacters)
	}
	if snapshot.RemainingQuota != 1_250_000 {
		t.Errorf("Expected 1250000 remaining, got %d", snapshot.RemainingQuota)
	}
}

// staticMeter is a fixed-usage kieli.UsageMeter.
type staticMeter int64

func (m staticMeter) CharactersTranslated(ctx context.Context, from, to time.Time) (int64, error) {
	return int64(m), nil
}

func TestServer_RateLimitsEndpoint(t *testing.T) {
	st := store.NewMemStore()
	limiter := kieli.NewDailyLimiter(st)
	mock := provider.NewMockProvider()
	translator := kieli.NewTranslator(mock, kieli.WithLimiter(limiter, 50))

	server := NewServer(translator, WithRateLimits(limiter, map[string]int{"translate_article": 50}))
	router := server.Router()

	if err := limiter.Increment(context.Background(), "translate_article"); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/rate-limits?function_name=translate_article", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status rateLimitStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.RequestCount != 1 || status.DailyLimit != 50 || status.Remaining != 49 {
		t.Errorf("Unexpected status: %+v", status)
	}
	if status.PercentageUsed != 2.0 {
		t.Errorf("Expected 2%% used, got %v", status.PercentageUsed)
	}

	// Unknown function
	rec = doJSON(t, router, http.MethodGet, "/api/rate-limits?function_name=nope", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown function, got %d", rec.Code)
	}

	// All functions
	rec = doJSON(t, router, http.MethodGet, "/api/rate-limits", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var all map[string]rateLimitStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if _, ok := all["translate_article"]; !ok {
		t.Errorf("Expected translate_article in listing, got %v", all)
	}
}
