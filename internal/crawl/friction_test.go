package crawl

import (
	"testing"
	"time"

	"journeylens/internal/fetch"
)

// healthyNode has no penalties: fast, static, rich content, linked, with CTAs.
func healthyNode() *PageNode {
	return &PageNode{
		URL:            "https://example.com/",
		ResponseTimeMs: 500,
		WordCount:      400,
		LinkCount:      5,
		CTATexts:       []string{"Sign Up"},
	}
}

func TestFrictionScorePenalties(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PageNode)
		want   float64
	}{
		{"no penalties", func(n *PageNode) {}, 100},
		{"slow over 1s", func(n *PageNode) { n.ResponseTimeMs = 1500 }, 90},
		{"slow over 3s", func(n *PageNode) { n.ResponseTimeMs = 3500 }, 80},
		{"slow over 5s", func(n *PageNode) { n.ResponseTimeMs = 6000 }, 70},
		{"needs js", func(n *PageNode) { n.NeedsJS = true }, 85},
		{"thin content", func(n *PageNode) { n.WordCount = 50 }, 75},
		{"moderate content", func(n *PageNode) { n.WordCount = 200 }, 85},
		{"dead end", func(n *PageNode) { n.LinkCount = 1 }, 90},
		{"no cta", func(n *PageNode) { n.CTATexts = nil }, 85},
		{"nav-only clickables", func(n *PageNode) {
			n.CTATexts = []string{"Home", "About us", "Blog"}
		}, 85},
		{"rage clicks", func(n *PageNode) {
			n.Interactions = &fetch.Interactions{Clicks: 5, RageClicks: 2, Scrolls: 4, MaxScrollDepth: 80}
		}, 80},
		{"shallow scroll", func(n *PageNode) {
			n.Interactions = &fetch.Interactions{Clicks: 5, Scrolls: 3, MaxScrollDepth: 10}
		}, 80},
		{"moderate scroll", func(n *PageNode) {
			n.Interactions = &fetch.Interactions{Clicks: 5, Scrolls: 3, MaxScrollDepth: 40}
		}, 90},
		{"no scroll events", func(n *PageNode) {
			n.Interactions = &fetch.Interactions{Clicks: 3}
		}, 100},
		{"few clicks", func(n *PageNode) {
			n.Interactions = &fetch.Interactions{Clicks: 1, MaxScrollDepth: 80}
		}, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := healthyNode()
			tt.mutate(node)
			if got := FrictionScore(node); got != tt.want {
				t.Errorf("FrictionScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrictionScoreFloorsAtZero(t *testing.T) {
	node := &PageNode{
		ResponseTimeMs: 9000,
		NeedsJS:        true,
		WordCount:      10,
		Interactions:   &fetch.Interactions{RageClicks: 10, MaxScrollDepth: 5},
	}
	if got := FrictionScore(node); got != 0 {
		t.Errorf("FrictionScore = %v, want floor 0", got)
	}
}

func TestFrictionScoreNoInteractionDataSkipsBehaviourPenalties(t *testing.T) {
	node := healthyNode()
	node.Interactions = nil
	if got := FrictionScore(node); got != 100 {
		t.Errorf("FrictionScore = %v, want 100 when no tracker data", got)
	}
}

func TestAnalyzeFrictionPatterns(t *testing.T) {
	graph := &SiteGraph{
		StartURL:  "https://example.com/",
		CrawledAt: time.Now(),
		Pages:     make(map[string]*PageNode),
		Edges:     make(map[string][]string),
	}
	for _, n := range []*PageNode{
		{URL: "https://example.com/", FrictionScore: 90, ResponseTimeMs: 400},
		{URL: "https://example.com/a", FrictionScore: 70, ResponseTimeMs: 800},
		{URL: "https://example.com/b", FrictionScore: 60, ResponseTimeMs: 3500},
		{URL: "https://example.com/c", FrictionScore: 40, ResponseTimeMs: 1200,
			Interactions: &fetch.Interactions{Clicks: 10, RageClicks: 3, Scrolls: 4}},
		{URL: "https://example.com/d", FrictionScore: 20, ResponseTimeMs: 6000},
	} {
		graph.Pages[n.URL] = n
	}

	analysis := AnalyzeFrictionPatterns(graph)
	if analysis.AverageScore != 56 {
		t.Errorf("AverageScore = %v, want 56", analysis.AverageScore)
	}
	if len(analysis.HighFrictionPages) != 1 || analysis.HighFrictionPages[0] != "https://example.com/d" {
		t.Errorf("HighFrictionPages = %v", analysis.HighFrictionPages)
	}
	if len(analysis.LowFrictionPages) != 1 || analysis.LowFrictionPages[0] != "https://example.com/" {
		t.Errorf("LowFrictionPages = %v", analysis.LowFrictionPages)
	}
	if len(analysis.SlowPages) != 2 {
		t.Errorf("SlowPages = %v, want 2 entries", analysis.SlowPages)
	}
	if len(analysis.RageClickPages) != 1 {
		t.Errorf("RageClickPages = %v, want 1 entry", analysis.RageClickPages)
	}
	if analysis.Interactions.TotalClicks != 10 || analysis.Interactions.TotalRageClicks != 3 || analysis.Interactions.TotalScrolls != 4 {
		t.Errorf("interaction totals = %+v", analysis.Interactions)
	}
	if analysis.Interactions.RageClickRate != 30 {
		t.Errorf("RageClickRate = %v, want 30", analysis.Interactions.RageClickRate)
	}
	if analysis.Interactions.AvgInteractionsPerPage != 2 {
		t.Errorf("AvgInteractionsPerPage = %v, want 2", analysis.Interactions.AvgInteractionsPerPage)
	}
	if len(analysis.ContentQuality) != 5 {
		t.Errorf("ContentQuality = %d entries, want 5", len(analysis.ContentQuality))
	}
	wantRecs := []string{
		"High rage click rate detected - investigate UI responsiveness and button states",
		"2 slow pages detected - optimize response times",
		"No trust signals found - consider adding testimonials, reviews, or security badges",
	}
	if len(analysis.Recommendations) != len(wantRecs) {
		t.Fatalf("Recommendations = %v", analysis.Recommendations)
	}
	for i, want := range wantRecs {
		if analysis.Recommendations[i] != want {
			t.Errorf("Recommendations[%d] = %q, want %q", i, analysis.Recommendations[i], want)
		}
	}
}

func TestAnalyzeFrictionPatternsJSHeavySite(t *testing.T) {
	graph := &SiteGraph{Pages: map[string]*PageNode{
		"https://example.com/":  {URL: "https://example.com/", FrictionScore: 70, NeedsJS: true, TrustSignals: []string{"testimonial"}},
		"https://example.com/a": {URL: "https://example.com/a", FrictionScore: 80, NeedsJS: true, TrustSignals: []string{"reviews"}},
		"https://example.com/b": {URL: "https://example.com/b", FrictionScore: 90},
	}}

	analysis := AnalyzeFrictionPatterns(graph)
	want := "Many JavaScript-heavy pages - consider optimizing loading performance"
	if len(analysis.Recommendations) != 1 || analysis.Recommendations[0] != want {
		t.Errorf("Recommendations = %v, want only %q", analysis.Recommendations, want)
	}
}

func TestAnalyzeFrictionPatternsEmptyGraph(t *testing.T) {
	analysis := AnalyzeFrictionPatterns(&SiteGraph{Pages: map[string]*PageNode{}})
	if analysis.AverageScore != 0 || len(analysis.HighFrictionPages) != 0 {
		t.Errorf("empty graph analysis = %+v, want zero values", analysis)
	}
}
