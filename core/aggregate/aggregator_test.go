package aggregate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/browser/browsertest"
	"github.com/gaurav-prasanna/readycrawl/core/fetch"
	"github.com/gaurav-prasanna/readycrawl/core/paginate"
	"github.com/google/go-cmp/cmp"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	moduleURL  = "https://docs.example.com/erp/module.html"
	featureURL = "https://docs.example.com/erp/ah-feature.html"
)

func featurePage(n int) string {
	return fmt.Sprintf(`<html><body>
<nav><ul><li><a href="/erp/ah/overview.html">Overview</a></li></ul></nav>
<main><h3>Feature page %d</h3><p>Detail %d</p></main>
<button>Next Page</button>
</body></html>`, n, n)
}

func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(120, 10, "Accounting Hub Readiness")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	mux := http.NewServeMux()
	mux.HandleFunc("/docs/ah.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(buf.Bytes())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAggregate_EndToEnd(t *testing.T) {
	srv := pdfServer(t)

	module := fmt.Sprintf(`<html><body>
<nav><ul><li><a href="/erp/index.html">ERP</a></li></ul></nav>
<main>
  <h2>Accounting Hub</h2>
  <p>What's new this update.</p>
  <a href="ah-feature.html">HTML</a>
  <a href="%[1]s/docs/ah.pdf">PDF</a>
  <div><span>Payables Features</span> <a href="payables.html">HTML</a> <a href="%[1]s/docs/missing.pdf">PDF</a></div>
</main>
</body></html>`, srv.URL)

	site := browsertest.NewSite(map[string][]string{
		moduleURL:  {module},
		featureURL: {featurePage(1), featurePage(2), featurePage(3), featurePage(3), featurePage(4)},
	})
	agg := New(paginate.New(site, paginate.WithSettle(0)), fetch.New())

	sections, moduleNav, err := agg.Aggregate(context.Background(), moduleURL)
	require.NoError(t, err)

	require.Len(t, moduleNav, 1)
	assert.Equal(t, "ERP", moduleNav[0].Text)
	assert.Equal(t, "https://docs.example.com/erp/index.html", moduleNav[0].URL)

	require.Len(t, sections, 2)
	assert.Equal(t, "Accounting Hub", sections[0].Title)
	assert.Equal(t, "Payables Features", sections[1].Title)

	hub := sections[0].Entries
	require.Len(t, hub, 2)

	assert.Equal(t, core.LabelHTML, hub[0].Label)
	assert.Equal(t, featureURL, hub[0].URL)
	assert.Empty(t, hub[0].Error)
	want := []core.Block{
		core.Heading(3, "Feature page 1"), core.Paragraph("Detail 1"),
		core.Heading(3, "Feature page 2"), core.Paragraph("Detail 2"),
		core.Heading(3, "Feature page 3"), core.Paragraph("Detail 3"),
	}
	if diff := cmp.Diff(want, hub[0].Content); diff != "" {
		t.Errorf("feature content mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, hub[0].Nav, 1)
	assert.Equal(t, "https://docs.example.com/erp/ah/overview.html", hub[0].Nav[0].URL)

	assert.Equal(t, core.LabelPDF, hub[1].Label)
	require.Len(t, hub[1].Content, 1)
	assert.Equal(t, core.BlockRawText, hub[1].Content[0].Kind)
	assert.Contains(t, hub[1].Content[0].Text, "Readiness")

	payables := sections[1].Entries
	require.Len(t, payables, 2)
	assert.Equal(t, "https://docs.example.com/erp/payables.html", payables[0].URL)
	assert.Empty(t, payables[0].Content)
	assert.Contains(t, payables[0].Error, "render")

	assert.Equal(t, core.LabelPDF, payables[1].Label)
	assert.Empty(t, payables[1].Content)
	assert.Contains(t, payables[1].Error, "404")

	assert.Equal(t, site.Opened(), site.Closed())
}

func TestAggregate_ModulePageFailure(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		moduleURL: {`<html><body><p>no main here</p></body></html>`},
	})
	agg := New(paginate.New(site, paginate.WithSettle(0)), fetch.New())

	_, _, err := agg.Aggregate(context.Background(), moduleURL)
	var ee *core.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, moduleURL, ee.URL)
}

func TestAggregate_NoEntries(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		moduleURL: {`<html><body><main><h2>Empty</h2><a href="x.html">Read more</a></main></body></html>`},
	})
	agg := New(paginate.New(site, paginate.WithSettle(0)), fetch.New())

	sections, _, err := agg.Aggregate(context.Background(), moduleURL)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestAggregate_Cancelled(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		moduleURL: {`<html><body><main><h2>A</h2><a href="x.html">HTML</a></main></body></html>`},
	})
	agg := New(paginate.New(site, paginate.WithSettle(0)), fetch.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := agg.Aggregate(ctx, moduleURL)
	assert.ErrorIs(t, err, context.Canceled)
}

func titles(t *testing.T, html string, skipDownloads bool) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	var out []string
	for _, a := range scan(doc, moduleURL, skipDownloads) {
		out = append(out, a.title)
	}
	return out
}

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "sibling heading",
			html: `<main><h2>Payables</h2><p>intro</p><a href="a.html">HTML</a><a href="a.pdf">PDF</a></main>`,
			want: []string{"Payables", "Payables"},
		},
		{
			name: "fallback to preceding text",
			html: `<main><p>Release 25B notes</p><ul><li><a href="a.html">HTML</a> <a href="a.pdf">PDF</a></li></ul></main>`,
			want: []string{"Release 25B notes", "Release 25B notes"},
		},
		{
			name: "empty heading is skipped",
			html: `<main><div>Receivables</div><h2> </h2><a href="a.html">HTML</a></main>`,
			want: []string{"Receivables"},
		},
		{
			name: "script text is ignored",
			html: `<main><p>Visible</p><script>var title = "hidden";</script><a href="a.html">HTML</a></main>`,
			want: []string{"Visible"},
		},
		{
			name: "nothing precedes",
			html: `<main><a href="a.html">HTML</a></main>`,
			want: []string{Untitled},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(t, tt.html, true))
		})
	}
}

func TestSectionTitle_DownloadTextCountsWhenNotSkipped(t *testing.T) {
	html := `<main><ul><li><a href="a.html">HTML</a> <a href="a.pdf">PDF</a></li></ul></main>`

	assert.Equal(t, []string{Untitled, Untitled}, titles(t, html, true))
	assert.Equal(t, []string{Untitled, "HTML"}, titles(t, html, false))
}

func TestScan_LabelsAndURLs(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<main><h2>S</h2>
<a href="guide.HTML"> HTML </a>
<a href="/files/Guide.PDF?download=1">PDF</a>
<a href="report.pdf">HTML</a>
<a href="other.html">Html</a>
<a href="#top">PDF</a>
</main>`))
	require.NoError(t, err)

	got := scan(doc, moduleURL, true)
	require.Len(t, got, 4)
	assert.Equal(t, anchor{title: "S", label: core.LabelHTML, url: "https://docs.example.com/erp/guide.HTML"}, got[0])
	assert.Equal(t, anchor{title: "S", label: core.LabelPDF, url: "https://docs.example.com/files/Guide.PDF?download=1"}, got[1])
	assert.Equal(t, core.LabelPDF, got[2].label)
	assert.Equal(t, anchor{title: "S", label: core.LabelPDF, url: "#top", err: `unusable link "#top"`}, got[3])
}

func TestAggregate_UnusableLinkKeptAsFailedEntry(t *testing.T) {
	site := browsertest.NewSite(map[string][]string{
		moduleURL: {`<html><body><main><h2>Payables</h2>
<a href="javascript:void(0)">HTML</a>
<a href="">PDF</a>
</main></body></html>`},
	})
	agg := New(paginate.New(site, paginate.WithSettle(0)), fetch.New())

	sections, _, err := agg.Aggregate(context.Background(), moduleURL)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Payables", sections[0].Title)

	entries := sections[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, core.Entry{Label: core.LabelHTML, URL: "javascript:void(0)", Content: []core.Block{}, Error: `unusable link "javascript:void(0)"`}, entries[0])
	assert.Equal(t, core.Entry{Label: core.LabelPDF, URL: "", Content: []core.Block{}, Error: `unusable link ""`}, entries[1])
	assert.Equal(t, 1, site.Opened())
}
