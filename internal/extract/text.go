// Package extract turns raw HTML into the structures the analyzers consume:
// plain text, ranked content blocks, and a readability-cleaned article view.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strippedTags are removed before text extraction; they never carry content
// a visitor reads.
const strippedTags = "script, style, noscript, svg, img, iframe"

// Text returns the visible text of a document with whitespace collapsed to
// single spaces. A document that fails to parse yields an empty string.
func Text(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find(strippedTags).Remove()
	return nodeText(doc.Selection)
}

// Title returns the document title, falling back to the first h1.
func Title(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return collapseSpaces(title)
	}
	return collapseSpaces(doc.Find("h1").First().Text())
}

// Truncate shortens s to at most n runes, appending an ellipsis when it cut
// anything off.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// nodeText walks a selection emitting text nodes separated by spaces, so
// words from adjacent elements never run together.
func nodeText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return collapseSpaces(strings.Join(parts, " "))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
