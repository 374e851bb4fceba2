package normalize

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/extract"
)

// Blocks walks the main content containers of doc in document order and
// returns one block per heading, paragraph, list item, table and image.
// Documents without a main landmark are walked from the root.
func Blocks(doc *goquery.Document, pageURL string) []core.Block {
	base := extract.BaseURL(doc, pageURL)

	roots := doc.Find(extract.MainSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(extract.MainSelector).Length() == 0
	})
	if roots.Length() == 0 {
		roots = doc.Selection
	}

	blocks := make([]core.Block, 0)
	roots.Each(func(_ int, root *goquery.Selection) {
		walk(root, base, &blocks)
	})
	return blocks
}

func walk(s *goquery.Selection, base *url.URL, out *[]core.Block) {
	s.Children().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch name {
		case "script", "style", "noscript", "template":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := extract.Text(c); text != "" {
				*out = append(*out, core.Heading(int(name[1]-'0'), text))
			}
			images(c, base, out)
		case "p":
			if text := extract.Text(c); text != "" {
				*out = append(*out, core.Paragraph(text))
			}
			images(c, base, out)
		case "li":
			listItem(c, base, out)
		case "table":
			if rows := tableRows(c); len(rows) > 0 {
				*out = append(*out, core.Table(rows))
			}
		case "img":
			image(c, base, out)
		default:
			walk(c, base, out)
		}
	})
}

// itemBlocks are the descendants of a list item that become blocks of their
// own instead of item text.
const itemBlocks = "h1, h2, h3, h4, h5, h6, p, table, ul, ol, script, style, noscript, template"

// listItem emits the item's own inline text, then walks its children so
// headings, paragraphs, tables, images and nested lists keep their kind and
// order.
func listItem(li *goquery.Selection, base *url.URL, out *[]core.Block) {
	own := li.Clone()
	own.Find(itemBlocks).Remove()
	if text := extract.Text(own); text != "" {
		*out = append(*out, core.ListItem(text))
	}
	walk(li, base, out)
}

// tableRows returns the trimmed th/td text of each row owned by table.
// Rows keep their own cell count.
func tableRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}
		var cells []string
		tr.Children().Filter("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, extract.Text(cell))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func images(s *goquery.Selection, base *url.URL, out *[]core.Block) {
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		image(img, base, out)
	})
}

func image(img *goquery.Selection, base *url.URL, out *[]core.Block) {
	src, ok := img.Attr("src")
	if !ok {
		return
	}
	if resolved := extract.Resolve(base, src); resolved != "" {
		*out = append(*out, core.Image(resolved))
	}
}
