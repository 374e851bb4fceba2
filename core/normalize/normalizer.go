// Package normalize converts rendered markup and PDF bytes into the
// normalized content model: an ordered sequence of typed blocks.
//
// The crawl report is built from blocks only. MarkdownNormalizer serves the
// single-page scrape command instead: it turns the noise-stripped main
// content of each rendered page into Markdown, keeping links and images
// absolute so the printed output stays usable outside the documentation site.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// MarkdownNormalizer converts main-content HTML of a scraped page to Markdown
// using html-to-markdown.
type MarkdownNormalizer struct {
	base string
}

// NewMarkdown creates a MarkdownNormalizer for pages served from pageURL.
// Relative links and image sources are resolved against it. An empty or
// non-absolute pageURL leaves them as written.
func NewMarkdown(pageURL string) *MarkdownNormalizer {
	n := &MarkdownNormalizer{}
	if u, err := url.Parse(pageURL); err == nil && u.Scheme != "" && u.Host != "" {
		n.base = u.String()
	}
	return n
}

// Normalize converts a cleaned HTML fragment into Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if n.base != "" {
		opts = append(opts, converter.WithDomain(n.base))
	}
	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// Pages normalizes the main content of each page of a paginated document and
// joins the non-empty results with a blank line.
func (n *MarkdownNormalizer) Pages(fragments []string) (string, error) {
	parts := make([]string, 0, len(fragments))
	for i, fragment := range fragments {
		md, err := n.Normalize(fragment)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
