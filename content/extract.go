// Package content turns fetched article HTML into the plain paragraph
// text the translation engine consumes.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/uutislabs/kieli"
)

// skippedContainers are elements whose text is never article prose.
var skippedContainers = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"aside":    true,
	"footer":   true,
	"figure":   true,
}

// Extractor pulls article paragraphs out of an HTML document.
type Extractor struct {
	minLength int
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMinLength drops paragraphs shorter than n runes. Bylines and
// timestamps tend to fall under a small cutoff.
func WithMinLength(n int) ExtractorOption {
	return func(e *Extractor) {
		e.minLength = n
	}
}

// NewExtractor creates an extractor with default settings.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the document and returns its paragraphs in order.
// Content inside an <article> element is preferred over the full body
// when one exists.
func (e *Extractor) Extract(htmlContent string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	scope := doc.Selection
	if article := doc.Find("article"); article.Length() > 0 {
		scope = article.First()
	}

	var paragraphs []string
	scope.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 || insideSkippedContainer(sel.Nodes[0]) {
			return
		}

		text := normalizeWhitespace(sel.Text())
		if text == "" || len([]rune(text)) < e.minLength {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	return paragraphs, nil
}

// ExtractParagraphs is a convenience wrapper with default settings.
func ExtractParagraphs(htmlContent string) ([]string, error) {
	return NewExtractor().Extract(htmlContent)
}

// Fingerprint returns the cache fingerprint of extracted paragraphs.
func Fingerprint(paragraphs []string) string {
	return kieli.HashParagraphs(paragraphs)
}

// insideSkippedContainer walks the node's ancestors looking for an
// element whose content is never article prose.
func insideSkippedContainer(node *html.Node) bool {
	for n := node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && skippedContainers[n.Data] {
			return true
		}
	}
	return false
}

// normalizeWhitespace collapses runs of whitespace to single spaces and
// trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
