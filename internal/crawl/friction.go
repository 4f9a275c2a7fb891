package crawl

import (
	"fmt"
	"sort"
	"strings"
)

// FrictionScore rates a page from 0 (worst) to 100 (frictionless) by applying
// fixed penalties for slow responses, JS dependence, observed frustration
// signals, and thin or dead-end content. Interaction penalties only apply
// when the page was rendered with the tracker attached.
func FrictionScore(node *PageNode) float64 {
	score := 100.0

	switch {
	case node.ResponseTimeMs > 5000:
		score -= 30
	case node.ResponseTimeMs > 3000:
		score -= 20
	case node.ResponseTimeMs > 1000:
		score -= 10
	}

	if node.NeedsJS {
		score -= 15
	}

	if inter := node.Interactions; inter != nil {
		score -= float64(inter.RageClicks) * 10
		// Depth only means something once the visitor actually scrolled.
		if inter.Scrolls > 0 {
			switch {
			case inter.MaxScrollDepth < 25:
				score -= 20
			case inter.MaxScrollDepth < 50:
				score -= 10
			}
		}
		if inter.Clicks < 2 {
			score -= 15
		}
	}

	switch {
	case node.WordCount < 100:
		score -= 25
	case node.WordCount < 300:
		score -= 15
	}

	if node.LinkCount < 3 {
		score -= 10
	}

	if !hasCTAKeyword(node.CTATexts) {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	return score
}

// ctaKeywords marks a page as having a clear call to action. Navigation-only
// clickables (Home, About, Blog) do not count.
var ctaKeywords = []string{"buy", "sign up", "get started", "learn more", "contact", "download"}

func hasCTAKeyword(labels []string) bool {
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, keyword := range ctaKeywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// PageIssue ties a URL to one detected problem.
type PageIssue struct {
	URL   string `json:"url"`
	Issue string `json:"issue"`
}

// InteractionInsights aggregates tracker events across the whole crawl.
type InteractionInsights struct {
	TotalClicks            int     `json:"total_clicks"`
	TotalRageClicks        int     `json:"total_rage_clicks"`
	TotalScrolls           int     `json:"total_scrolls"`
	RageClickRate          float64 `json:"rage_click_rate"`
	AvgInteractionsPerPage float64 `json:"avg_interactions_per_page"`
}

// ContentMetrics summarizes one successfully fetched page's content quality.
type ContentMetrics struct {
	URL             string `json:"url"`
	WordCount       int    `json:"word_count"`
	LinkCount       int    `json:"link_count"`
	FormCount       int    `json:"form_count"`
	HasTrustSignals bool   `json:"has_trust_signals"`
}

// FrictionAnalysis summarizes friction across a crawled graph.
type FrictionAnalysis struct {
	AverageScore      float64             `json:"average_score"`
	HighFrictionPages []string            `json:"high_friction_pages"`
	LowFrictionPages  []string            `json:"low_friction_pages"`
	SlowPages         []PageIssue         `json:"slow_pages,omitempty"`
	RageClickPages    []PageIssue         `json:"rage_click_pages,omitempty"`
	Interactions      InteractionInsights `json:"interaction_insights"`
	ContentQuality    []ContentMetrics    `json:"content_quality"`
	Recommendations   []string            `json:"recommendations"`
}

// AnalyzeFrictionPatterns ranks the graph's pages by friction score and
// derives site-level recommendations. The worst and best 20% of pages (at
// least one each) are surfaced as high and low friction sets.
func AnalyzeFrictionPatterns(graph *SiteGraph) *FrictionAnalysis {
	analysis := &FrictionAnalysis{}
	pages := graph.PageList()
	if len(pages) == 0 {
		return analysis
	}

	ranked := make([]*PageNode, len(pages))
	copy(ranked, pages)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FrictionScore < ranked[j].FrictionScore
	})

	var total float64
	for _, p := range ranked {
		total += p.FrictionScore
	}
	analysis.AverageScore = total / float64(len(ranked))

	band := len(ranked) / 5
	if band < 1 {
		band = 1
	}
	for _, p := range ranked[:band] {
		analysis.HighFrictionPages = append(analysis.HighFrictionPages, p.URL)
	}
	for _, p := range ranked[len(ranked)-band:] {
		analysis.LowFrictionPages = append(analysis.LowFrictionPages, p.URL)
	}

	for _, p := range pages {
		if p.ResponseTimeMs > 3000 {
			analysis.SlowPages = append(analysis.SlowPages, PageIssue{
				URL:   p.URL,
				Issue: fmt.Sprintf("response time %.0fms", p.ResponseTimeMs),
			})
		}
		if inter := p.Interactions; inter != nil {
			analysis.Interactions.TotalClicks += inter.Clicks
			analysis.Interactions.TotalRageClicks += inter.RageClicks
			analysis.Interactions.TotalScrolls += inter.Scrolls
			if inter.RageClicks > 0 {
				analysis.RageClickPages = append(analysis.RageClickPages, PageIssue{
					URL:   p.URL,
					Issue: fmt.Sprintf("%d rage clicks", inter.RageClicks),
				})
			}
		}
		if p.FetchError == "" {
			analysis.ContentQuality = append(analysis.ContentQuality, ContentMetrics{
				URL:             p.URL,
				WordCount:       p.WordCount,
				LinkCount:       p.LinkCount,
				FormCount:       p.FormCount,
				HasTrustSignals: len(p.TrustSignals) > 0,
			})
		}
	}
	if analysis.Interactions.TotalClicks > 0 {
		analysis.Interactions.RageClickRate = float64(analysis.Interactions.TotalRageClicks) / float64(analysis.Interactions.TotalClicks) * 100
	}
	analysis.Interactions.AvgInteractionsPerPage = float64(analysis.Interactions.TotalClicks) / float64(len(pages))

	stats := graph.Stats()
	if analysis.Interactions.RageClickRate > 5 {
		analysis.Recommendations = append(analysis.Recommendations,
			"High rage click rate detected - investigate UI responsiveness and button states")
	}
	if stats.JSPagesCount > stats.StaticPagesCount {
		analysis.Recommendations = append(analysis.Recommendations,
			"Many JavaScript-heavy pages - consider optimizing loading performance")
	}
	if len(analysis.SlowPages) > 0 {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("%d slow pages detected - optimize response times", len(analysis.SlowPages)))
	}
	trustFound := false
	for _, m := range analysis.ContentQuality {
		if m.HasTrustSignals {
			trustFound = true
			break
		}
	}
	if !trustFound {
		analysis.Recommendations = append(analysis.Recommendations,
			"No trust signals found - consider adding testimonials, reviews, or security badges")
	}

	return analysis
}
