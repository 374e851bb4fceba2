package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays the Markdown rendering of a report out as a PDF document.
// Headings get larger bold type, table rows and the nav outline are set in a
// monospace font. Images are kept as their "[Image] url" line.
type PDFRenderer struct {
	markdown *MarkdownRenderer
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{markdown: NewMarkdownRenderer()}
}

// Render converts the report into PDF bytes.
func (r *PDFRenderer) Render(report *core.Report) ([]byte, error) {
	md, err := r.markdown.Render(report)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Readiness report", true)
	// Core fonts are cp1252; translate the UTF-8 text into it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, "Readiness report", "", "L", false)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Source: %s (%s)", report.LandingURL, report.GeneratedAt.Format("2006-01-02 15:04 MST"))), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	inContent, inNav := false, false
	for _, line := range strings.Split(string(md), "\n") {
		trimmed := strings.TrimSpace(line)

		switch classify(line, inContent, inNav) {
		case lineBlank:
			pdf.Ln(3)
		case lineMarker:
			switch trimmed {
			case StartContent, EndContent:
				inContent = trimmed == StartContent
			case StartNav, EndNav:
				inNav = trimmed == StartNav
			}
		case lineRule:
			pdf.Ln(2)
			w, _ := pdf.GetPageSize()
			left, _, right, _ := pdf.GetMargins()
			y := pdf.GetY()
			pdf.Line(left, y, w-right, y)
			pdf.Ln(2)
		case lineHeading:
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(strings.TrimLeft(line, "# "))), level)
		case lineMono:
			pdf.SetFont("Courier", "", 8)
			pdf.MultiCell(0, 4, tr(cleanInlineMarkdown(line)), "", "L", false)
		case lineEntry:
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetTextColor(60, 60, 160)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		case lineTopic:
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type lineKind int

const (
	lineText lineKind = iota
	lineBlank
	lineMarker
	lineRule
	lineHeading
	lineMono
	lineEntry
	lineTopic
)

// classify decides how a line of the Markdown report is laid out. Between
// the content delimiters lines are extracted page text, so a leading "#" or
// a "---" there is not report structure.
func classify(line string, inContent, inNav bool) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return lineBlank
	case trimmed == StartContent || trimmed == EndContent || trimmed == StartNav || trimmed == EndNav:
		return lineMarker
	case inNav || strings.HasPrefix(trimmed, "|"):
		return lineMono
	case inContent:
		return lineText
	case trimmed == "---":
		return lineRule
	case strings.HasPrefix(line, "#"):
		return lineHeading
	case strings.HasPrefix(trimmed, "**["):
		return lineEntry
	case strings.HasPrefix(trimmed, "**Topic:"):
		return lineTopic
	}
	return lineText
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

var (
	inlineCode = regexp.MustCompile("`([^`]+)`")
	inlineLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
)

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
// Links keep their target after the text.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = inlineLink.ReplaceAllString(text, "$1 <$2>")
	return strings.TrimRight(text, " ")
}
