package extract

import (
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// trustKeywords are substrings whose presence suggests social proof or
// credibility content.
var trustKeywords = []string{
	"testimonial", "review", "rating", "stars", "trusted", "guarantee",
	"certified", "accredited", "badge", "as seen", "featured in", "award",
}

// Clickable is one interactive element with its visible label and target.
type Clickable struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// StructuredContent is the readability-cleaned view of a page, formatted for
// an LLM: the main article as markdown plus navigational and trust context.
type StructuredContent struct {
	Title           string      `json:"title"`
	MetaDescription string      `json:"meta_description"`
	Markdown        string      `json:"markdown"`
	Clickables      []Clickable `json:"clickables"`
	TrustSignals    []string    `json:"trust_signals"`
	WordCount       int         `json:"word_count"`
	LinkCount       int         `json:"link_count"`
	FormCount       int         `json:"form_count"`
}

// Structured extracts the main content of a page via the Readability
// algorithm and converts it to markdown. Best-effort: parse or readability
// failures leave the affected fields empty rather than erroring, so callers
// always get a usable (possibly sparse) view.
func Structured(rawHTML, pageURL string) *StructuredContent {
	content := &StructuredContent{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return content
	}

	content.Title = Title(rawHTML)
	content.MetaDescription, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	content.LinkCount = doc.Find("a").Length()
	content.FormCount = doc.Find("form").Length()
	content.Clickables = clickables(doc)
	content.TrustSignals = trustSignals(doc)

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err == nil && article.Node != nil {
		if md, mdErr := htmltomarkdown.ConvertNode(article.Node); mdErr == nil {
			content.Markdown = strings.TrimSpace(string(md))
		}
		if content.Title == "" {
			content.Title = article.Title()
		}
	}
	if content.Markdown == "" {
		// Readability gave nothing usable; fall back to visible text.
		content.Markdown = Text(rawHTML)
	}
	content.WordCount = len(strings.Fields(content.Markdown))

	return content
}

const maxClickables = 50

func clickables(doc *goquery.Document) []Clickable {
	var out []Clickable
	seen := make(map[string]bool)
	doc.Find(`a, button, input[type="submit"]`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		tag := goquery.NodeName(el)
		label := collapseSpaces(el.Text())
		if tag == "input" {
			label, _ = el.Attr("value")
			label = strings.TrimSpace(label)
			if label == "" {
				label = "Submit"
			}
		}
		if label == "" {
			return true
		}
		href, _ := el.Attr("href")
		key := tag + "|" + label + "|" + href
		if seen[key] {
			return true
		}
		seen[key] = true
		out = append(out, Clickable{Tag: tag, Label: label, Href: href})
		return len(out) < maxClickables
	})
	return out
}

func trustSignals(doc *goquery.Document) []string {
	lower := strings.ToLower(nodeText(doc.Selection))
	var found []string
	for _, kw := range trustKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
