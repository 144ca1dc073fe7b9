package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/uutislabs/kieli"
)

// OpenAIProvider implements TranslationProvider using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a single text. Empty or whitespace-only input
// short-circuits without a network call.
func (p *OpenAIProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	systemPrompt := fmt.Sprintf(
		"You are a professional news translator. Translate the user's text from %s to %s. "+
			"Preserve meaning, names, numbers and tone. Respond with only the translation, nothing else.",
		kieli.GetLanguageName(sourceLang), kieli.GetLanguageName(targetLang))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", &kieli.ProviderError{
			Kind:    classifyOpenAIError(err),
			Message: "OpenAI API call failed",
			Cause:   err,
		}
	}

	if len(resp.Choices) == 0 {
		return "", &kieli.ProviderError{
			Kind:    kieli.KindTransient,
			Message: "no response from OpenAI",
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps client errors into the error taxonomy by
// inspecting the message, since the client does not expose structured
// kinds for every failure.
func classifyOpenAIError(err error) kieli.ErrorKind {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return kieli.KindRateLimited
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "incorrect api key"):
		return kieli.KindUnauthorized
	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "temporary") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503"):
		return kieli.KindTransient
	default:
		return kieli.KindUnknown
	}
}

// Verify OpenAIProvider implements TranslationProvider
var _ TranslationProvider = (*OpenAIProvider)(nil)
