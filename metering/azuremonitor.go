// Package metering queries external usage-metering capabilities for
// billed translation consumption.
package metering

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/uutislabs/kieli"
)

// TokenSource supplies a bearer token for the metering API.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token. Suitable
// when an external process handles token refresh.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// AzureMonitorMeter implements kieli.UsageMeter against the Azure
// Monitor metrics REST API, summing the TextCharactersTranslated metric
// over the requested window at hourly granularity.
type AzureMonitorMeter struct {
	resourceID string
	endpoint   string
	token      TokenSource
	client     *http.Client
}

// Config holds configuration for the Azure Monitor meter.
type Config struct {
	ResourceID string        // Full ARM resource id of the Translator account (required)
	Endpoint   string        // Management endpoint (default: "https://management.azure.com")
	Token      TokenSource   // Bearer token source (required)
	Timeout    time.Duration // Per-call timeout (default: 30s)
	Client     *http.Client  // Optional HTTP client override
}

// NewAzureMonitorMeter creates a meter for one Translator resource.
func NewAzureMonitorMeter(cfg Config) (*AzureMonitorMeter, error) {
	if cfg.ResourceID == "" {
		return nil, fmt.Errorf("translator resource id is required")
	}
	if cfg.Token == nil {
		return nil, fmt.Errorf("token source is required")
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://management.azure.com"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &AzureMonitorMeter{
		resourceID: cfg.ResourceID,
		endpoint:   endpoint,
		token:      cfg.Token,
		client:     client,
	}, nil
}

// metricsResponse mirrors the relevant slice of the metrics payload.
type metricsResponse struct {
	Value []struct {
		Timeseries []struct {
			Data []struct {
				Total *float64 `json:"total"`
			} `json:"data"`
		} `json:"timeseries"`
	} `json:"value"`
}

// CharactersTranslated sums billed characters over [from, to].
func (m *AzureMonitorMeter) CharactersTranslated(ctx context.Context, from, to time.Time) (int64, error) {
	params := url.Values{}
	params.Set("api-version", "2018-01-01")
	params.Set("metricnames", "TextCharactersTranslated")
	params.Set("timespan", from.UTC().Format(time.RFC3339)+"/"+to.UTC().Format(time.RFC3339))
	params.Set("interval", "PT1H")
	params.Set("aggregation", "Total")

	reqURL := m.endpoint + m.resourceID + "/providers/Microsoft.Insights/metrics?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building metrics request: %w", err)
	}

	token, err := m.token(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring metering token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", kieli.UserAgent())

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("metrics call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading metrics response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("metrics query returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded metricsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, fmt.Errorf("decoding metrics response: %w", err)
	}

	var total int64
	for _, metric := range decoded.Value {
		for _, series := range metric.Timeseries {
			for _, point := range series.Data {
				if point.Total != nil {
					total += int64(*point.Total)
				}
			}
		}
	}

	return total, nil
}

// Verify AzureMonitorMeter implements UsageMeter
var _ kieli.UsageMeter = (*AzureMonitorMeter)(nil)
