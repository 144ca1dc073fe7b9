package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock translation backend for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	FailOn       string            // Text that triggers Err ("" means every call when Err is set)
	Err          error             // Error to return for failing calls

	mu        sync.Mutex
	callCount int
	lastText  string
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Moi":   "Hi",
			"Terve": "Hello",
			"Hallitus kokoontui tänään.": "The government convened today.",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastText = text
	m.mu.Unlock()

	if m.Err != nil && (m.FailOn == "" || m.FailOn == text) {
		return "", m.Err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	// Bracket unknown inputs so tests can spot them.
	return fmt.Sprintf("[%s]", text), nil
}

// CallCount returns the number of times Translate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastText returns the most recent input passed to Translate.
func (m *MockProvider) LastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// Reset resets the call count and last input.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastText = ""
}

// Verify MockProvider implements TranslationProvider
var _ TranslationProvider = (*MockProvider)(nil)
