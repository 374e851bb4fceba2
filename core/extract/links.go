package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BaseURL returns the URL relative references in doc resolve against:
// the page URL, overridden by a <base href> element when present.
func BaseURL(doc *goquery.Document, pageURL string) *url.URL {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = &url.URL{}
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}
	return base
}

// Resolve resolves href against base. Empty, fragment-only and
// non-navigable (mailto:, javascript:, tel:) references yield "".
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "tel:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

// Text returns the text of s with whitespace runs collapsed and trimmed.
func Text(s *goquery.Selection) string {
	return CollapseSpace(s.Text())
}

// CollapseSpace collapses whitespace runs into single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
