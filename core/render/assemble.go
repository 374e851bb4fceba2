// Package render assembles crawled modules into a report and renders the
// report as Markdown, JSON or PDF.
package render

import (
	"time"

	"github.com/gaurav-prasanna/readycrawl/core"
)

// Assemble builds the report of a crawl. Modules without any entry are left
// out; the rest keep their discovery order.
func Assemble(landingURL string, modules []core.Module, failures []core.ModuleFailure, generatedAt time.Time) *core.Report {
	report := &core.Report{
		LandingURL:  landingURL,
		GeneratedAt: generatedAt.UTC(),
		Modules:     make([]core.Module, 0, len(modules)),
		Failures:    failures,
	}
	for _, m := range modules {
		if m.EntryCount() == 0 {
			continue
		}
		report.Modules = append(report.Modules, m)
	}
	return report
}

// ForFormat returns the renderer for a format name: "markdown", "json" or "pdf".
func ForFormat(format string) (core.Renderer, bool) {
	switch format {
	case "markdown", "md":
		return NewMarkdownRenderer(), true
	case "json":
		return NewJSONRenderer(), true
	case "pdf":
		return NewPDFRenderer(), true
	}
	return nil, false
}
