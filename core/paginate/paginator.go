// Package paginate renders a URL through a scripted browser session and
// follows its "Next Page" control, accumulating the main content of every
// distinct page until the content runs out or repeats.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/extract"
	"github.com/rs/zerolog"
)

const (
	defaultLoadTimeout = 60 * time.Second
	defaultSettle      = 2 * time.Second
	defaultMaxPages    = 50
)

// PageBreak separates page fragments in the merged document.
const PageBreak = "\n<!-- page break -->\n"

// Paginator renders paginated pages.
type Paginator struct {
	browser       core.Browser
	loadTimeout   time.Duration
	settle        time.Duration
	maxPages      int
	volatileAttrs []string
	log           zerolog.Logger
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithLoadTimeout bounds navigation and every later browser interaction.
func WithLoadTimeout(d time.Duration) Option {
	return func(p *Paginator) { p.loadTimeout = d }
}

// WithSettle sets the wait after activating the "Next Page" control.
func WithSettle(d time.Duration) Option {
	return func(p *Paginator) { p.settle = d }
}

// WithMaxPages caps the pages accumulated per call. Zero means no cap.
func WithMaxPages(n int) Option {
	return func(p *Paginator) { p.maxPages = n }
}

// WithVolatileAttrs sets the attributes ignored by fingerprinting.
func WithVolatileAttrs(attrs []string) Option {
	return func(p *Paginator) { p.volatileAttrs = attrs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Paginator) { p.log = l }
}

// New creates a Paginator over browser.
func New(browser core.Browser, opts ...Option) *Paginator {
	p := &Paginator{
		browser:       browser,
		loadTimeout:   defaultLoadTimeout,
		settle:        defaultSettle,
		maxPages:      defaultMaxPages,
		volatileAttrs: DefaultVolatileAttrs,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the accumulated main content of a paginated URL.
type Result struct {
	URL string
	// FirstPage is the full rendered markup of the first page.
	FirstPage string
	// Pages holds the outer HTML of the main content container of each distinct page.
	Pages []string
	// Partial is set when a browser error ended pagination after the first page.
	Partial bool
	// Truncated is set when the page cap ended pagination.
	Truncated bool
}

// HTML joins the page fragments into one markup string.
func (r *Result) HTML() string {
	return strings.Join(r.Pages, PageBreak)
}

// Document parses the merged page fragments.
func (r *Result) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.HTML()))
	if err != nil {
		return nil, &core.ExtractionError{URL: r.URL, Reason: "parsing rendered pages", Err: err}
	}
	return doc, nil
}

// Shell parses the full markup of the first page, which carries the
// landmarks outside the main content such as navigation and <base>.
func (r *Result) Shell() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.FirstPage))
	if err != nil {
		return nil, &core.ExtractionError{URL: r.URL, Reason: "parsing first page", Err: err}
	}
	return doc, nil
}

// BaseURL returns the URL relative references in the pages resolve against.
func (r *Result) BaseURL() string {
	doc, err := r.Shell()
	if err != nil {
		return r.URL
	}
	return extract.BaseURL(doc, r.URL).String()
}

// Render loads url and follows the "Next Page" control.
//
// A navigation failure returns *core.RenderError; a first page without a
// main content container returns *core.ExtractionError. After the first
// page, any error stops pagination and the pages accumulated so far are
// returned with Partial set. A page whose fingerprint was already seen ends
// pagination and is discarded.
func (p *Paginator) Render(ctx context.Context, url string) (*Result, error) {
	log := p.log.With().Str("url", url).Logger()

	sess, err := p.browser.NewSession(ctx)
	if err != nil {
		return nil, &core.RenderError{URL: url, Err: err}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Debug().Err(err).Msg("closing browser session")
		}
	}()

	loadCtx, cancel := p.bounded(ctx)
	err = sess.Navigate(loadCtx, url)
	cancel()
	if err != nil {
		return nil, &core.RenderError{URL: url, Err: err}
	}

	res := &Result{URL: url}
	seen := make(map[string]struct{})
	for {
		if p.maxPages > 0 && len(res.Pages) >= p.maxPages {
			res.Truncated = true
			log.Warn().Int("max_pages", p.maxPages).Msg("page cap reached, stopping pagination")
			break
		}

		page, fragment, err := p.mainFragment(ctx, sess, url)
		if err != nil {
			if len(res.Pages) == 0 {
				return nil, err
			}
			res.Partial = true
			log.Debug().Err(err).Int("page", len(res.Pages)+1).Msg("pagination stopped")
			break
		}

		fp := Fingerprint(fragment, p.volatileAttrs)
		if _, dup := seen[fp]; dup {
			log.Debug().Int("page", len(res.Pages)+1).Msg("repeated page content, stopping pagination")
			break
		}
		seen[fp] = struct{}{}
		if len(res.Pages) == 0 {
			res.FirstPage = page
		}
		res.Pages = append(res.Pages, fragment)
		log.Debug().Int("page", len(res.Pages)).Msg("page extracted")

		advanced, err := p.next(ctx, sess)
		if err != nil {
			res.Partial = true
			log.Debug().Err(err).Int("page", len(res.Pages)).Msg("pagination stopped")
			break
		}
		if !advanced {
			break
		}
		if err := sleep(ctx, p.settle); err != nil {
			res.Partial = true
			break
		}
	}
	return res, nil
}

// mainFragment returns the full page markup and its main content container.
func (p *Paginator) mainFragment(ctx context.Context, sess core.Session, url string) (string, string, error) {
	readCtx, cancel := p.bounded(ctx)
	defer cancel()

	html, err := sess.HTML(readCtx)
	if err != nil {
		return "", "", &core.RenderError{URL: url, Err: err}
	}

	fragment, err := extract.MainHTML(html)
	if err != nil {
		reason := "parsing rendered page"
		if errors.Is(err, extract.ErrNoMainContent) {
			reason = "main content container absent"
		}
		return "", "", &core.ExtractionError{URL: url, Reason: reason, Err: err}
	}
	return html, fragment, nil
}

func (p *Paginator) next(ctx context.Context, sess core.Session) (bool, error) {
	nextCtx, cancel := p.bounded(ctx)
	defer cancel()
	advanced, err := sess.NextPage(nextCtx)
	if err != nil {
		return false, fmt.Errorf("activating next page control: %w", err)
	}
	return advanced, nil
}

func (p *Paginator) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.loadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.loadTimeout)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
