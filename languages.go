package kieli

import "strings"

// LanguageNames maps language codes to human-readable names, used when
// a backend wants a prose language description rather than a code.
var LanguageNames = map[string]string{
	"fi": "Finnish",
	"sv": "Swedish",
	"en": "English",
	"et": "Estonian",
	"no": "Norwegian",
	"da": "Danish",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"ru": "Russian",
	"uk": "Ukrainian",
	"pl": "Polish",
	"nl": "Dutch",
	"pt": "Portuguese",
	"ja": "Japanese",
	"zh": "Chinese",
	"ar": "Arabic",
	"so": "Somali",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	base := strings.ToLower(strings.Split(strings.ReplaceAll(langCode, "-", "_"), "_")[0])
	if name, ok := LanguageNames[base]; ok {
		return name
	}
	return langCode
}
