package core

import (
	"strings"
	"time"
)

// Label classifies a downloadable entry.
type Label string

const (
	LabelHTML Label = "HTML"
	LabelPDF  Label = "PDF"
)

// BlockKind discriminates the Block variants.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "list_item"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
	BlockRawText   BlockKind = "raw_text"
)

// Block is one normalized unit of extracted content.
// Only the fields relevant to Kind are set.
type Block struct {
	Kind  BlockKind  `json:"kind"`
	Level int        `json:"level,omitempty"`
	Text  string     `json:"text,omitempty"`
	Rows  [][]string `json:"rows,omitempty"`
	URL   string     `json:"url,omitempty"`
}

func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

func ListItem(text string) Block {
	return Block{Kind: BlockListItem, Text: text}
}

func Table(rows [][]string) Block {
	return Block{Kind: BlockTable, Rows: rows}
}

func Image(url string) Block {
	return Block{Kind: BlockImage, URL: url}
}

func RawText(text string) Block {
	return Block{Kind: BlockRawText, Text: text}
}

// Flatten renders the block as plain text. Tables become pipe-delimited rows.
func (b Block) Flatten() string {
	switch b.Kind {
	case BlockTable:
		lines := make([]string, 0, len(b.Rows))
		for _, row := range b.Rows {
			lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		}
		return strings.Join(lines, "\n")
	case BlockImage:
		return "[Image] " + b.URL
	case BlockRawText:
		return strings.TrimSpace(b.Text)
	default:
		return b.Text
	}
}

// NavNode is one item of a sidebar navigation tree.
type NavNode struct {
	Text     string     `json:"text"`
	URL      string     `json:"url,omitempty"`
	Children []*NavNode `json:"children,omitempty"`
}

// Entry is one downloadable content item and its extracted content.
// An empty Content signals extraction failure; the entry itself is kept.
type Entry struct {
	Label   Label      `json:"label"`
	URL     string     `json:"url"`
	Content []Block    `json:"content"`
	Nav     []*NavNode `json:"nav,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Section is a titled grouping of entries within a module.
type Section struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Tile is a module name/URL pair discovered on the landing index.
type Tile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Module is one top-level documentation unit.
type Module struct {
	Name      string     `json:"name"`
	SourceURL string     `json:"source_url"`
	Nav       []*NavNode `json:"nav,omitempty"`
	Sections  []Section  `json:"sections"`
}

// EntryCount returns the number of entries across all sections.
func (m *Module) EntryCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Entries)
	}
	return n
}

// ModuleFailure records a module aborted on its first page.
type ModuleFailure struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Report is the single output of a crawl run.
type Report struct {
	LandingURL  string          `json:"landing_url"`
	GeneratedAt time.Time       `json:"generated_at"`
	Modules     []Module        `json:"modules"`
	Failures    []ModuleFailure `json:"failures,omitempty"`
}
