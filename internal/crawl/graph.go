package crawl

import (
	"encoding/json"
	"sort"
	"time"

	"journeylens/internal/fetch"
)

// PageNode is one crawled page with everything the scorer needs. HTML is kept
// in memory for downstream extraction but excluded from exports.
type PageNode struct {
	URL            string              `json:"url"`
	Depth          int                 `json:"depth"`
	Title          string              `json:"title,omitempty"`
	HTML           string              `json:"-"`
	ContentType    string              `json:"content_type,omitempty"`
	ResponseTimeMs float64             `json:"response_time_ms"`
	NeedsJS        bool                `json:"needs_js"`
	Interactions   *fetch.Interactions `json:"interaction_data,omitempty"`
	ScreenshotPath string              `json:"screenshot_path,omitempty"`
	WordCount      int                 `json:"word_count"`
	LinkCount      int                 `json:"link_count"`
	FormCount      int                 `json:"form_count"`
	TrustSignals   []string            `json:"trust_signals,omitempty"`
	CTATexts       []string            `json:"cta_texts,omitempty"`
	FrictionScore  float64             `json:"friction_score"`
	FetchError     string              `json:"fetch_error,omitempty"`
	Links          []string            `json:"-"`
}

// SiteGraph is the result of an enhanced crawl: pages keyed by URL plus the
// same-host link edges discovered between them.
type SiteGraph struct {
	StartURL  string               `json:"start_url"`
	CrawledAt time.Time            `json:"crawled_at"`
	Pages     map[string]*PageNode `json:"pages"`
	Edges     map[string][]string  `json:"edges"`
}

// PageList returns pages ordered by crawl depth, then URL, for deterministic
// iteration.
func (g *SiteGraph) PageList() []*PageNode {
	pages := make([]*PageNode, 0, len(g.Pages))
	for _, p := range g.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Depth != pages[j].Depth {
			return pages[i].Depth < pages[j].Depth
		}
		return pages[i].URL < pages[j].URL
	})
	return pages
}

// GraphStats are aggregate crawl statistics, always derived from the pages
// rather than tracked separately.
type GraphStats struct {
	TotalPages        int     `json:"total_pages"`
	TotalInteractions int     `json:"total_interactions"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	JSPagesCount      int     `json:"js_pages_count"`
	StaticPagesCount  int     `json:"static_pages_count"`
}

// Stats derives aggregate statistics from the graph. Pages that failed to
// fetch count toward the total but not toward the JS/static split.
func (g *SiteGraph) Stats() GraphStats {
	stats := GraphStats{TotalPages: len(g.Pages)}

	var totalResponseTime float64
	for _, p := range g.Pages {
		totalResponseTime += p.ResponseTimeMs
		if inter := p.Interactions; inter != nil {
			stats.TotalInteractions += inter.Clicks + inter.Scrolls + inter.Hovers + inter.Inputs + inter.RageClicks
		}
		if p.FetchError != "" {
			continue
		}
		if p.NeedsJS {
			stats.JSPagesCount++
		} else {
			stats.StaticPagesCount++
		}
	}
	if stats.TotalPages > 0 {
		stats.AvgResponseTimeMs = totalResponseTime / float64(stats.TotalPages)
	}
	return stats
}

type graphExport struct {
	Metadata graphMetadata        `json:"metadata"`
	Pages    map[string]*PageNode `json:"pages"`
	Edges    map[string][]string  `json:"edges"`
}

type graphMetadata struct {
	StartURL  string    `json:"start_url"`
	CrawledAt time.Time `json:"crawled_at"`
	GraphStats
	EdgeCount int `json:"edge_count"`
}

// ExportJSON serializes the graph with a metadata header for persistence or
// API responses.
func (g *SiteGraph) ExportJSON() ([]byte, error) {
	edgeCount := 0
	for _, targets := range g.Edges {
		edgeCount += len(targets)
	}
	return json.MarshalIndent(graphExport{
		Metadata: graphMetadata{
			StartURL:   g.StartURL,
			CrawledAt:  g.CrawledAt,
			GraphStats: g.Stats(),
			EdgeCount:  edgeCount,
		},
		Pages: g.Pages,
		Edges: g.Edges,
	}, "", "  ")
}
