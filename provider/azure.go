package provider

import (
	"bytes"
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

// AzureProvider implements TranslationProvider against the Azure
// Translator REST API (v3.0). Billing is per translated character.
type AzureProvider struct {
	key    string
	apiURL string
	region string
	client *http.Client
}

// AzureConfig holds configuration for the Azure provider.
type AzureConfig struct {
	Key      string        // Subscription key (required)
	Endpoint string        // API endpoint (default: the global Translator endpoint)
	Region   string        // Resource region header (default: "westeurope")
	Timeout  time.Duration // Per-call timeout (default: 30s)
	Client   *http.Client  // Optional HTTP client override
}

// NewAzureProvider creates an Azure Translator provider.
func NewAzureProvider(cfg AzureConfig) (*AzureProvider, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("azure translator key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.cognitive.microsofttranslator.com/"
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	region := cfg.Region
	if region == "" {
		region = "westeurope"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &AzureProvider{
		key:    cfg.Key,
		apiURL: endpoint + "translate",
		region: region,
		client: client,
	}, nil
}

// azureResult mirrors the relevant slice of the translate response.
type azureResult []struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// azureError mirrors the API error envelope.
type azureError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Translate translates a single text. Empty or whitespace-only input
// short-circuits without a billed network call.
func (p *AzureProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	params := url.Values{}
	params.Set("api-version", "3.0")
	params.Set("from", sourceLang)
	params.Set("to", targetLang)

	body, err := json.Marshal([]map[string]string{{"text": text}})
	if err != nil {
		return "", &kieli.ProviderError{Kind: kieli.KindUnknown, Message: "encoding request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", &kieli.ProviderError{Kind: kieli.KindUnknown, Message: "building request", Cause: err}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Ocp-Apim-Subscription-Region", p.region)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", kieli.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &kieli.ProviderError{Kind: kieli.KindTransient, Message: "translate call failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &kieli.ProviderError{Kind: kieli.KindTransient, Message: "reading response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", p.classifyStatus(resp.StatusCode, respBody)
	}

	var result azureResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &kieli.ProviderError{Kind: kieli.KindUnknown, Message: "decoding response", Cause: err}
	}
	if len(result) == 0 || len(result[0].Translations) == 0 {
		return "", &kieli.ProviderError{Kind: kieli.KindUnknown, Message: "empty translation in response"}
	}

	return result[0].Translations[0].Text, nil
}

// Azure error codes for unsupported or invalid language pairs.
const (
	azureCodeInvalidSourceLang = 400035
	azureCodeInvalidTargetLang = 400036
)

// classifyStatus maps a non-200 response into the error taxonomy.
func (p *AzureProvider) classifyStatus(status int, body []byte) error {
	var apiErr azureError
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &kieli.ProviderError{Kind: kieli.KindRateLimited, Message: msg}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &kieli.ProviderError{Kind: kieli.KindUnauthorized, Message: msg}
	case status == http.StatusBadRequest &&
		(apiErr.Error.Code == azureCodeInvalidSourceLang || apiErr.Error.Code == azureCodeInvalidTargetLang):
		return &kieli.ProviderError{Kind: kieli.KindInvalidLanguage, Message: msg}
	case status >= 500:
		return &kieli.ProviderError{Kind: kieli.KindTransient, Message: msg}
	default:
		return &kieli.ProviderError{Kind: kieli.KindUnknown, Message: msg}
	}
}

// Verify AzureProvider implements TranslationProvider
var _ TranslationProvider = (*AzureProvider)(nil)
