package extract

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxBlocks      = 25
	snippetMaxLen  = 500
	minBlockWords  = 5
	standaloneWord = 10
)

// Form is a summary of one HTML form: its field identifiers joined with
// commas, in document order.
type Form struct {
	Fields string `json:"fields"`
}

// Block is one content region of a page, ranked so the most journey-relevant
// regions come first.
type Block struct {
	Heading   string   `json:"heading"`
	Snippet   string   `json:"snippet"`
	CTAs      []string `json:"local_ctas"`
	Forms     []Form   `json:"local_forms"`
	TextWords int      `json:"text_words"`
	LinkCount int      `json:"link_count"`
}

// Blocks extracts content regions from a page. Containers with at least five
// words qualify when they carry a heading, more than ten words, or a usable
// snippet. Results are ranked with heading-plus-CTA blocks first and capped
// at 25; a page with no qualifying container falls back to a single
// whole-page block.
func Blocks(rawHTML string) []Block {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var blocks []Block
	doc.Find("section, div, main, article, aside").Each(func(_ int, container *goquery.Selection) {
		text := nodeText(container)
		words := len(strings.Fields(text))
		if words < minBlockWords {
			return
		}
		heading := headingOf(container)
		snippet := detailedSnippet(container)
		if heading == "" && words <= standaloneWord && snippet == "" {
			return
		}
		blocks = append(blocks, Block{
			Heading:   heading,
			Snippet:   snippet,
			CTAs:      findCTAs(container),
			Forms:     findForms(container),
			TextWords: words,
			LinkCount: container.Find("a").Length(),
		})
	})

	sort.SliceStable(blocks, func(i, j int) bool {
		return blockLess(blocks[j], blocks[i])
	})

	if len(blocks) == 0 {
		if fallback, ok := wholePageBlock(doc); ok {
			blocks = append(blocks, fallback)
		}
	}

	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}
	return blocks
}

// blockLess orders blocks ascending by rank: heading presence, then CTAs or
// forms, then meaningful length, then word count, then fewer links.
func blockLess(a, b Block) bool {
	if x, y := a.Heading != "", b.Heading != ""; x != y {
		return !x
	}
	if x, y := len(a.CTAs) > 0 || len(a.Forms) > 0, len(b.CTAs) > 0 || len(b.Forms) > 0; x != y {
		return !x
	}
	if x, y := a.TextWords > 30, b.TextWords > 30; x != y {
		return !x
	}
	if a.TextWords != b.TextWords {
		return a.TextWords < b.TextWords
	}
	return a.LinkCount > b.LinkCount
}

func headingOf(container *goquery.Selection) string {
	for _, level := range []string{"h1", "h2", "h3", "h4"} {
		if text := collapseSpaces(container.Find(level).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// detailedSnippet preserves some structure for the analyzers: headings are
// prefixed with "HEADING:" and meaningful paragraph texts follow, joined
// with pipes and capped at 500 characters.
func detailedSnippet(container *goquery.Selection) string {
	var parts []string
	container.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if text := collapseSpaces(h.Text()); text != "" {
			parts = append(parts, "HEADING: "+text)
		}
	})
	container.Find("p, li, div").Each(func(_ int, el *goquery.Selection) {
		if text := collapseSpaces(el.Text()); len(text) > 10 {
			parts = append(parts, text)
		}
	})
	return clipRunes(strings.Join(parts, " | "), snippetMaxLen)
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// findCTAs collects clickable labels in document order, deduplicated. Submit
// inputs use their value attribute, defaulting to "Submit".
func findCTAs(container *goquery.Selection) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(label string) {
		label = strings.TrimSpace(label)
		if label != "" && !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	container.Find("a, button, input").Each(func(_ int, el *goquery.Selection) {
		if goquery.NodeName(el) == "input" {
			if inputType, _ := el.Attr("type"); inputType == "submit" {
				value, _ := el.Attr("value")
				if strings.TrimSpace(value) == "" {
					value = "Submit"
				}
				add(value)
			}
			return
		}
		add(collapseSpaces(el.Text()))
	})
	return out
}

func findForms(container *goquery.Selection) []Form {
	var forms []Form
	container.Find("form").Each(func(_ int, form *goquery.Selection) {
		var fields []string
		form.Find("input, select, textarea").Each(func(_ int, inp *goquery.Selection) {
			fields = append(fields, fieldName(inp))
		})
		forms = append(forms, Form{Fields: strings.Join(fields, ", ")})
	})
	return forms
}

// fieldName identifies a form field by the most descriptive attribute
// available.
func fieldName(inp *goquery.Selection) string {
	for _, attr := range []string{"name", "id", "placeholder", "type"} {
		if v, ok := inp.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return "field"
}

func wholePageBlock(doc *goquery.Document) (Block, bool) {
	fullText := nodeText(doc.Selection)
	if fullText == "" {
		return Block{}, false
	}
	return Block{
		Heading:   "Page Content",
		Snippet:   clipRunes(fullText, snippetMaxLen),
		CTAs:      findCTAs(doc.Selection),
		Forms:     findForms(doc.Selection),
		TextWords: len(strings.Fields(fullText)),
		LinkCount: doc.Find("a").Length(),
	}, true
}
