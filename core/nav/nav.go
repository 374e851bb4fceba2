// Package nav extracts the sidebar navigation tree of a rendered page.
// The tree is informational: nothing in section or entry extraction depends on it.
package nav

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/gaurav-prasanna/readycrawl/core/extract"
)

// DefaultMaxDepth bounds recursion over malformed list nesting.
const DefaultMaxDepth = 16

// Extract locates the first navigation landmark in doc and returns its
// nested list structure as an ordered tree. It returns nil when the page has
// no navigation landmark or the landmark holds no list.
func Extract(doc *goquery.Document, pageURL string) []*core.NavNode {
	return ExtractDepth(doc, pageURL, DefaultMaxDepth)
}

// ExtractDepth is Extract with an explicit depth cap.
func ExtractDepth(doc *goquery.Document, pageURL string, maxDepth int) []*core.NavNode {
	landmark := doc.Find(`nav, [role="navigation"]`).First()
	if landmark.Length() == 0 {
		return nil
	}
	top := landmark.Find("ul, ol").First()
	if top.Length() == 0 {
		return nil
	}
	return walk(top, extract.BaseURL(doc, pageURL), 0, maxDepth)
}

func walk(list *goquery.Selection, base *url.URL, depth, maxDepth int) []*core.NavNode {
	if depth >= maxDepth {
		return nil
	}

	var nodes []*core.NavNode
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		// Anchors and text of nested lists belong to the children.
		own := li.Clone()
		own.Find("ul, ol").Remove()

		node := &core.NavNode{}
		if a := own.Find("a[href]").First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			node.Text = extract.Text(a)
			node.URL = extract.Resolve(base, href)
		} else {
			node.Text = extract.Text(own)
		}

		if sub := li.Find("ul, ol").First(); sub.Length() > 0 {
			node.Children = walk(sub, base, depth+1, maxDepth)
		}
		nodes = append(nodes, node)
	})
	return nodes
}

// Outline renders nodes one per line, indented two spaces per depth, as
// "- [text](url)" when the node links somewhere and "- text" otherwise.
func Outline(nodes []*core.NavNode) string {
	var lines []string
	var visit func(ns []*core.NavNode, depth int)
	visit = func(ns []*core.NavNode, depth int) {
		for _, n := range ns {
			prefix := strings.Repeat("  ", depth) + "- "
			if n.URL != "" {
				lines = append(lines, prefix+"["+n.Text+"]("+n.URL+")")
			} else {
				lines = append(lines, prefix+n.Text)
			}
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
	return strings.Join(lines, "\n")
}
