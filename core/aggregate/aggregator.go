// Package aggregate collects the downloadable entries of a module page into
// titled sections and extracts the content behind each entry.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/extract"
	"github.com/gaurav-prasanna/readycrawl/core/nav"
	"github.com/gaurav-prasanna/readycrawl/core/normalize"
	"github.com/gaurav-prasanna/readycrawl/core/paginate"
	"github.com/gaurav-prasanna/readycrawl/crawl"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Untitled is the section title used when no heading or text precedes an entry.
const Untitled = "(no title)"

// PageRenderer renders a URL and its pagination.
type PageRenderer interface {
	Render(ctx context.Context, url string) (*paginate.Result, error)
}

// Aggregator builds the sections of a module.
type Aggregator struct {
	pages         PageRenderer
	fetcher       core.Fetcher
	skipDownloads bool
	log           zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

// WithSkipDownloadText controls whether the text of other HTML/PDF anchors
// counts as preceding text when an entry has no sibling heading (default
// true). With it off, a PDF link that directly follows an HTML link is
// titled "HTML".
func WithSkipDownloadText(skip bool) Option {
	return func(a *Aggregator) { a.skipDownloads = skip }
}

// New creates an Aggregator rendering HTML entries with pages and
// downloading PDF entries with fetcher.
func New(pages PageRenderer, fetcher core.Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{pages: pages, fetcher: fetcher, skipDownloads: true, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// anchor is a download link found on a module page. An anchor whose href
// cannot be followed keeps the raw href as url and the reason in err.
type anchor struct {
	title string
	label core.Label
	url   string
	err   string
}

// Aggregate renders moduleURL, groups its HTML and PDF entries by section
// title and extracts their content. It also returns the module's navigation
// tree. Errors rendering the module page itself are returned; entry failures
// are recorded on the entry.
func (a *Aggregator) Aggregate(ctx context.Context, moduleURL string) ([]core.Section, []*core.NavNode, error) {
	res, err := a.pages.Render(ctx, moduleURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := res.Document()
	if err != nil {
		return nil, nil, err
	}

	var moduleNav []*core.NavNode
	if shell, err := res.Shell(); err == nil {
		moduleNav = nav.Extract(shell, moduleURL)
	}

	anchors := scan(doc, res.BaseURL(), a.skipDownloads)
	a.log.Debug().Str("url", moduleURL).Int("entries", len(anchors)).Msg("module entries found")

	var sections []core.Section
	index := make(map[string]int)
	for _, an := range anchors {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		entry := a.entry(ctx, an)

		i, ok := index[an.title]
		if !ok {
			i = len(sections)
			index[an.title] = i
			sections = append(sections, core.Section{Title: an.title})
		}
		sections[i].Entries = append(sections[i].Entries, entry)
	}
	return sections, moduleNav, nil
}

// scan returns the HTML and PDF download anchors of doc in document order.
// Anchors whose href does not resolve to a page are kept and marked failed.
func scan(doc *goquery.Document, baseURL string, skipDownloads bool) []anchor {
	base := extract.BaseURL(doc, baseURL)

	var anchors []anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if !isDownloadLabel(s.Text()) {
			return
		}
		title := sectionTitle(s.Get(0), skipDownloads)
		href, _ := s.Attr("href")
		u := extract.Resolve(base, href)
		if u == "" {
			anchors = append(anchors, anchor{
				title: title,
				label: core.Label(strings.TrimSpace(s.Text())),
				url:   href,
				err:   fmt.Sprintf("unusable link %q", href),
			})
			return
		}
		label := core.LabelHTML
		if crawl.IsPDF(u) {
			label = core.LabelPDF
		}
		anchors = append(anchors, anchor{title: title, label: label, url: u})
	})
	return anchors
}

func isDownloadLabel(text string) bool {
	t := strings.TrimSpace(text)
	return t == string(core.LabelHTML) || t == string(core.LabelPDF)
}

func (a *Aggregator) entry(ctx context.Context, an anchor) core.Entry {
	e := core.Entry{Label: an.label, URL: an.url}
	log := a.log.With().Str("section", an.title).Str("url", an.url).Logger()
	if an.err != "" {
		e.Content = []core.Block{}
		e.Error = an.err
		log.Warn().Str("error", an.err).Msg("entry has no usable link")
		return e
	}

	var err error
	if an.label == core.LabelPDF {
		e.Content, err = a.pdfContent(ctx, an.url)
	} else {
		e.Content, e.Nav, err = a.htmlContent(ctx, an.url)
	}
	if err != nil {
		e.Content = []core.Block{}
		e.Nav = nil
		e.Error = err.Error()
		log.Warn().Err(err).Msg("entry extraction failed")
		return e
	}
	log.Info().Str("label", string(an.label)).Int("blocks", len(e.Content)).Msg("entry extracted")
	return e
}

func (a *Aggregator) pdfContent(ctx context.Context, url string) ([]core.Block, error) {
	res, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	block, err := normalize.PDF(url, res.Body)
	if err != nil {
		return nil, err
	}
	return []core.Block{block}, nil
}

func (a *Aggregator) htmlContent(ctx context.Context, url string) ([]core.Block, []*core.NavNode, error) {
	res, err := a.pages.Render(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	doc, err := res.Document()
	if err != nil {
		return nil, nil, err
	}

	var entryNav []*core.NavNode
	if shell, err := res.Shell(); err == nil {
		entryNav = nav.Extract(shell, url)
	}
	return normalize.Blocks(doc, res.BaseURL()), entryNav, nil
}

var headings = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// sectionTitle derives the section an anchor belongs to: the nearest
// preceding sibling heading with text, else the nearest preceding text in
// document order. Script-like text is never used; text of other download
// anchors is passed over when skipDownloads is set.
func sectionTitle(a *html.Node, skipDownloads bool) string {
	for n := a.PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type == html.ElementNode && headings[n.Data] {
			if t := extract.CollapseSpace(nodeText(n)); t != "" {
				return t
			}
		}
	}

	for n := previous(a); n != nil; n = previous(n) {
		if n.Type != html.TextNode || skipText(n, skipDownloads) {
			continue
		}
		if t := extract.CollapseSpace(n.Data); t != "" {
			return t
		}
	}
	return Untitled
}

// previous returns the node preceding n in document order.
func previous(n *html.Node) *html.Node {
	if p := n.PrevSibling; p != nil {
		for p.LastChild != nil {
			p = p.LastChild
		}
		return p
	}
	return n.Parent
}

func skipText(n *html.Node, skipDownloads bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch p.Data {
		case "script", "style", "noscript", "template":
			return true
		case "a":
			if skipDownloads && isDownloadLabel(nodeText(p)) {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
