package render

import (
	"bytes"
	"strings"

	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/nav"
	"github.com/nao1215/markdown"
)

// Content delimiters framing each entry.
const (
	StartContent = "__START OF CONTENT__"
	EndContent   = "__END OF CONTENT__"
	StartNav     = "__START OF NAV__"
	EndNav       = "__END OF NAV__"
	NoContent    = "(No content available)"
)

// MarkdownRenderer writes the report as one Markdown document: a level one
// heading per module, a level two heading per section and a delimited
// block of content per entry.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts the report into Markdown bytes.
func (r *MarkdownRenderer) Render(report *core.Report) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	for _, m := range report.Modules {
		md.H1(m.Name)
		md.PlainText("")
		for _, s := range m.Sections {
			md.H2(s.Title)
			md.PlainText("")
			for _, e := range s.Entries {
				writeEntry(md, s.Title, e)
			}
		}
	}

	if err := md.Build(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func writeEntry(md *markdown.Markdown, title string, e core.Entry) {
	md.PlainTextf("**Topic: %s**", title)
	md.PlainTextf("**[%s] %s**", e.Label, e.URL)
	md.PlainText("")
	md.PlainText(StartContent)
	md.PlainText("")

	if len(e.Nav) > 0 {
		md.PlainText(StartNav)
		md.PlainText("")
		md.PlainText(strings.TrimRight(nav.Outline(e.Nav), "\n"))
		md.PlainText("")
		md.PlainText(EndNav)
		md.PlainText("")
	}

	if text := Text(e.Content); text != "" {
		md.PlainText(text)
	} else {
		md.PlainText(NoContent)
	}
	md.PlainText("")
	md.PlainText(EndContent)
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
}

// Text flattens blocks into plain text, one paragraph per block.
func Text(blocks []core.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := b.Flatten(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
