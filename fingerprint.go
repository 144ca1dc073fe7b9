package kieli

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashParagraphs computes the SHA-256 fingerprint of an ordered paragraph
// sequence. The digest is order-sensitive: reordering paragraphs changes
// it. It is the mismatch guard that keeps a cache key from silently
// serving translations of edited content.
func HashParagraphs(paragraphs []string) string {
	joined := strings.Join(paragraphs, "\n")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// Key identifies one cached translation: a content scope plus a
// language pair.
type Key struct {
	ArticleID  string
	SourceLang string
	TargetLang string
}

// String renders the key in its stored form, e.g. "yle-8312/fi_en".
func (k Key) String() string {
	return k.ArticleID + "/" + k.SourceLang + "_" + k.TargetLang
}
