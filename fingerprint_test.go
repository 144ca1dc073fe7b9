package kieli

import "testing"

func TestHashParagraphs(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		expected   string
	}{
		{
			name:       "single paragraph",
			paragraphs: []string{"Moi"},
			expected:   "a32799c816cc8b94e93645ae6720f29ccc2dc267558d305b811f14582bc0fb5d",
		},
		{
			name:       "two paragraphs",
			paragraphs: []string{"Moi", "Terve"},
			expected:   "1257861f9f6a97ba2a7fa77281c514cd99b8932a83110c27d7ffc44e0cac12a9",
		},
		{
			name:       "empty sequence",
			paragraphs: nil,
			expected:   "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashParagraphs(tt.paragraphs)
			if result != tt.expected {
				t.Errorf("HashParagraphs(%v) = %q, want %q", tt.paragraphs, result, tt.expected)
			}
			if len(result) != 64 {
				t.Errorf("HashParagraphs(%v) length = %d, want 64", tt.paragraphs, len(result))
			}
		})
	}
}

func TestHashParagraphs_Deterministic(t *testing.T) {
	paragraphs := []string{"Hallitus kokoontui tänään.", "Päätös syntyi nopeasti."}
	if HashParagraphs(paragraphs) != HashParagraphs(paragraphs) {
		t.Error("Expected identical hashes for identical input")
	}
}

func TestHashParagraphs_OrderSensitive(t *testing.T) {
	a := HashParagraphs([]string{"Moi", "Terve"})
	b := HashParagraphs([]string{"Terve", "Moi"})
	if a == b {
		t.Error("Expected different hashes for reordered paragraphs")
	}
	if b != "e230a24c71070166c2543dee2b180153baf6e2e6412797f7bd7ba3388ab5d41d" {
		t.Errorf("Unexpected hash for reordered paragraphs: %q", b)
	}
}

func TestHashParagraphs_ContentSensitive(t *testing.T) {
	a := HashParagraphs([]string{"Moi"})
	b := HashParagraphs([]string{"Moi!"})
	if a == b {
		t.Error("Expected different hashes for different content")
	}
}

func TestKey_String(t *testing.T) {
	key := Key{ArticleID: "yle-8312", SourceLang: "fi", TargetLang: "en"}
	expected := "yle-8312/fi_en"

	if key.String() != expected {
		t.Errorf("Key.String() = %q, want %q", key.String(), expected)
	}
}
