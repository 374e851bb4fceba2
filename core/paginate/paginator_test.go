package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/browser/browsertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "https://docs.example.com/erp/feature.html"

func page(n int) string {
	return fmt.Sprintf(`<html><body><nav><ul><li>Menu</li></ul></nav>
<main><h2>Page %d</h2><p>Body of page %d</p></main>
<button>Next Page</button></body></html>`, n, n)
}

func newPaginator(site *browsertest.Site, opts ...Option) *Paginator {
	return New(site, append([]Option{WithSettle(0)}, opts...)...)
}

func TestRender_StopsOnRepeatedPage(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		target: {page(1), page(2), page(3), page(3), page(4)},
	})

	res, err := newPaginator(site).Render(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, res.Pages, 3)
	assert.Contains(t, res.Pages[0], "Page 1")
	assert.Contains(t, res.Pages[2], "Page 3")
	assert.Contains(t, res.FirstPage, "<nav>")
	assert.False(t, res.Partial)
	assert.Equal(t, 1, site.Closed())
}

func TestRender_StopsWhenControlMissing(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{target: {page(1), page(2)}})

	res, err := newPaginator(site).Render(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
}

func TestRender_TerminatesWhenControlNeverDisables(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{target: {page(1), page(2)}})
	site.Stuck = map[string]bool{target: true}

	res, err := newPaginator(site).Render(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
}

func TestRender_WhitespaceOnlyDifferenceIsARepeat(t *testing.T) {
	again := `<html><body><main>
	  <h2>Page 1</h2>
	  <p>Body   of page 1</p>
	</main></body></html>`
	site := browsertest.NewSite(map[string][]string{target: {page(1), again}})

	res, err := newPaginator(site).Render(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, res.Pages, 1)
}

func TestRender_MaxPages(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{target: {page(1), page(2), page(3)}})

	res, err := newPaginator(site, WithMaxPages(2)).Render(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, res.Pages, 2)
	assert.True(t, res.Truncated)
}

func TestRender_FirstPageWithoutMain(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		target: {`<html><body><p>No landmark</p></body></html>`},
	})

	res, err := newPaginator(site).Render(context.Background(), target)
	assert.Nil(t, res)

	var ee *core.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, target, ee.URL)
}

func TestRender_NavigationFailure(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{target: {page(1)}})
	site.NavigateErr = map[string]error{target: errors.New("net::ERR_TIMED_OUT")}

	_, err := newPaginator(site).Render(context.Background(), target)
	var re *core.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 1, site.Closed())
}

func TestRender_MidPaginationFailureKeepsPartialContent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*browsertest.Site)
		pages int
	}{
		{"read error", func(s *browsertest.Site) { s.HTMLErrAt = map[string]int{target: 2} }, 2},
		{"click error", func(s *browsertest.Site) { s.NextErrAt = map[string]int{target: 0} }, 1},
		{"later page without main", func(s *browsertest.Site) {
			s.Pages[target][1] = `<html><body>gone</body></html>`
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := browsertest.NewSite(map[string][]string{target: {page(1), page(2), page(3)}})
			tt.setup(site)

			res, err := newPaginator(site).Render(context.Background(), target)
			require.NoError(t, err)
			assert.Len(t, res.Pages, tt.pages)
			assert.True(t, res.Partial)
		})
	}
}

func TestResult_Document(t *testing.T) {
	res := &Result{URL: target, Pages: []string{"<main><p>a</p></main>", "<main><p>b</p></main>"}}

	doc, err := res.Document()
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("main").Length())
}

func TestResult_BaseURL(t *testing.T) {
	res := &Result{URL: target, FirstPage: `<html><head><base href="/en/"></head><body></body></html>`}
	assert.Equal(t, "https://docs.example.com/en/", res.BaseURL())

	res = &Result{URL: target, FirstPage: `<html><body></body></html>`}
	assert.Equal(t, target, res.BaseURL())
}

func TestFingerprint(t *testing.T) {
	a := `<main data-timestamp="1"><p>Same</p></main>`
	b := `<main data-timestamp="2">
		<p>Same</p>
	</main>`
	c := `<main><p>Different</p></main>`

	assert.Equal(t, Fingerprint(a, DefaultVolatileAttrs), Fingerprint(b, DefaultVolatileAttrs))
	assert.NotEqual(t, Fingerprint(a, DefaultVolatileAttrs), Fingerprint(c, DefaultVolatileAttrs))
	assert.NotEqual(t, Fingerprint(a, nil), Fingerprint(b, nil), "volatile attributes count when not stripped")
}

func TestCanonicalize_UnicodeNormalization(t *testing.T) {
	composed := "<p>caf\u00e9</p>"
	decomposed := "<p>cafe\u0301</p>"
	assert.Equal(t, Canonicalize(composed, nil), Canonicalize(decomposed, nil))
}
