// Package provider implements translation backends behind the
// TranslationProvider interface.
package provider

import (
	"fmt"

	"github.com/uutislabs/kieli"
)

// TranslationProvider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type TranslationProvider = kieli.TranslationProvider

// Backend selects a concrete translation backend at construction time.
type Backend string

const (
	// BackendAzure is the Azure Translator REST backend.
	BackendAzure Backend = "azure"
	// BackendOpenAI is the OpenAI chat-completion backend.
	BackendOpenAI Backend = "openai"
	// BackendMock is the in-memory test backend.
	BackendMock Backend = "mock"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend
	Azure   AzureConfig
	OpenAI  OpenAIConfig
}

// New constructs the configured backend. Unknown backends are a
// construction-time error, not a runtime fallback.
func New(cfg Config) (TranslationProvider, error) {
	switch cfg.Backend {
	case BackendAzure:
		return NewAzureProvider(cfg.Azure)
	case BackendOpenAI:
		return NewOpenAIProvider(cfg.OpenAI), nil
	case BackendMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", cfg.Backend)
	}
}
