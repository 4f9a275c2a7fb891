// Package signals derives deterministic facts about a site from its text and
// content blocks, used to ground LLM analysis and sanity-check its output.
package signals

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"journeylens/internal/extract"
)

var ctaKeywords = []string{
	"book a call",
	"schedule",
	"get started",
	"sign up",
	"start now",
	"try",
	"contact",
	"buy",
}

var socialKeywords = []string{"testimonial", "case study", "reviews", "as seen on", "clients", "logos"}

var schedulingKeywords = []string{"calendly", "hubspot meetings", "savvycal", "oncehub", "calendar"}

var (
	faqPattern         = regexp.MustCompile(`\bf(aq|requently asked questions)\b`)
	pricingPattern     = regexp.MustCompile(`\b(pricing|plans|cost)\b`)
	amountPattern      = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d{2})?\s?[kK]?`)
	testimonialPattern = regexp.MustCompile(`(?i)testimonial|case study|reviews`)
)

// Facts are boolean and count checks a funnel audit cares about, computed
// from page text and extracted blocks without any model involvement.
type Facts struct {
	CTAOccurrences int  `json:"cta_occurrences"`
	HasCTA         bool `json:"has_cta"`
	HasSocialProof bool `json:"has_social_proof"`
	FormsCount     int  `json:"forms_count"`
	HasForm        bool `json:"has_form"`
	HasScheduler   bool `json:"has_scheduler"`
	HasFAQ         bool `json:"has_faq"`
	HasPricing     bool `json:"has_pricing"`
}

// SiteFacts computes Facts from lowercased page text plus block-level CTA and
// form counts.
func SiteFacts(text string, blocks []extract.Block) Facts {
	t := strings.ToLower(text)

	ctaHits := 0
	for _, k := range ctaKeywords {
		ctaHits += strings.Count(t, k)
	}
	blockCTAs := 0
	formsCount := 0
	for _, b := range blocks {
		blockCTAs += len(b.CTAs)
		formsCount += len(b.Forms)
	}

	socialHits := 0
	for _, k := range socialKeywords {
		socialHits += strings.Count(t, k)
	}

	hasScheduler := false
	for _, k := range schedulingKeywords {
		if strings.Contains(t, k) {
			hasScheduler = true
			break
		}
	}

	return Facts{
		CTAOccurrences: ctaHits + blockCTAs,
		HasCTA:         ctaHits+blockCTAs > 0,
		HasSocialProof: socialHits > 0,
		FormsCount:     formsCount,
		HasForm:        formsCount > 0,
		HasScheduler:   hasScheduler,
		HasFAQ:         faqPattern.MatchString(t),
		HasPricing:     pricingPattern.MatchString(t),
	}
}

// Support carries concrete UI strings lifted from the pages so the analyzer
// can quote real labels instead of inventing them. All lists are deduplicated
// in first-seen order and capped.
type Support struct {
	NavLabels         []string `json:"navLabels"`
	Headings          []string `json:"headings"`
	CTALabels         []string `json:"ctaLabels"`
	GuaranteePhrases  []string `json:"guaranteePhrases"`
	PricingAmounts    []string `json:"pricingAmounts"`
	TestimonialsCount int      `json:"testimonialsCount"`
}

// Supporting walks raw page HTML collecting navigation labels, top headings,
// CTA labels (block CTAs merged in first), guarantee sentences, and dollar
// amounts.
func Supporting(htmlPages []string, blocks []extract.Block) Support {
	var navLabels, headings, ctaLabels, guaranteePhrases, pricingAmounts []string
	testimonialsCount := 0

	for _, b := range blocks {
		ctaLabels = append(ctaLabels, b.CTAs...)
	}

	for _, rawHTML := range htmlPages {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
		if err != nil {
			continue
		}

		doc.Find("nav a").Each(func(_ int, a *goquery.Selection) {
			if t := clean(a.Text()); t != "" {
				navLabels = append(navLabels, t)
			}
		})

		doc.Find("h1, h2").Each(func(_ int, h *goquery.Selection) {
			if t := clean(h.Text()); t != "" {
				headings = append(headings, t)
			}
		})

		doc.Find("a, button, input").Each(func(_ int, el *goquery.Selection) {
			if goquery.NodeName(el) == "input" {
				if inputType, _ := el.Attr("type"); inputType == "submit" {
					value, _ := el.Attr("value")
					if strings.TrimSpace(value) == "" {
						value = "Submit"
					}
					ctaLabels = append(ctaLabels, strings.TrimSpace(value))
				}
				return
			}
			if t := clean(el.Text()); t != "" {
				ctaLabels = append(ctaLabels, t)
			}
		})

		pageText := extract.Text(rawHTML)
		for _, sentence := range strings.Split(pageText, ".") {
			lower := strings.ToLower(sentence)
			if strings.Contains(lower, "guarantee") || strings.Contains(lower, "money back") {
				guaranteePhrases = append(guaranteePhrases, clean(sentence)+".")
			}
		}
		for _, m := range amountPattern.FindAllString(pageText, -1) {
			pricingAmounts = append(pricingAmounts, strings.TrimSpace(m))
		}
		testimonialsCount += len(testimonialPattern.FindAllString(pageText, -1))
	}

	return Support{
		NavLabels:         capList(dedupe(navLabels), 25),
		Headings:          capList(dedupe(headings), 40),
		CTALabels:         capList(dedupe(ctaLabels), 40),
		GuaranteePhrases:  capList(dedupe(guaranteePhrases), 20),
		PricingAmounts:    capList(dedupe(pricingAmounts), 20),
		TestimonialsCount: testimonialsCount,
	}
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func capList(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
