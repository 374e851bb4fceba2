// Package extract locates landmark regions in rendered HTML.
// It isolates the main content from a full page by:
//  1. Finding the main content landmark (<main> or role="main")
//  2. Optionally removing noise elements (scripts, forms, ads) for display
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MainSelector matches the main content landmark by tag or role.
const MainSelector = `main, [role="main"]`

// ErrNoMainContent is returned when a page has no main content landmark.
var ErrNoMainContent = errors.New("no main content container found")

// noiseSelectors are HTML elements removed before display extraction.
// These contribute no meaningful content to the page text.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".ads", ".advertisement",
}

// Main returns the first main content landmark of doc, or an empty selection.
func Main(doc *goquery.Document) *goquery.Selection {
	return doc.Find(MainSelector).First()
}

// MainHTML parses a full page and returns the outer HTML of its main content
// landmark. It returns ErrNoMainContent when the landmark is absent.
func MainHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	main := Main(doc)
	if main.Length() == 0 {
		return "", ErrNoMainContent
	}

	result, err := goquery.OuterHtml(main)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}

// HTMLExtractor strips noise from HTML and returns the main content fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract takes raw HTML and returns a cleaned HTML fragment containing
// only the main content. The landmark is preferred, then <article>, then <body>.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, sel := range []string{MainSelector, "article", "body"} {
		found := doc.Find(sel)
		if found.Length() > 0 {
			content = found.First()
			break
		}
	}

	if content == nil {
		return "", ErrNoMainContent
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	return result, nil
}
