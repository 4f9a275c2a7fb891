// Package crawl walks a website breadth-first within its own host, building
// either a plain URL list or an enhanced graph with per-page friction scores.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"journeylens/internal/extract"
	"journeylens/internal/fetch"
	"journeylens/pkg/logging"
)

const defaultCrawlDelay = 500 * time.Millisecond

type Crawler struct {
	fetcher *fetch.Fetcher
	delay   time.Duration
	logger  logging.Logger
}

type Option func(*Crawler)

// WithDelay sets the pause between page fetches. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) { c.delay = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

func New(fetcher *fetch.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher: fetcher,
		delay:   defaultCrawlDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queueItem struct {
	url   string
	depth int
}

// SameHost crawls breadth-first from startURL and returns the URLs visited,
// in discovery order. Only links on the exact same host are followed.
// Individual page failures are logged and skipped; the crawl itself only
// fails on an unusable start URL or a cancelled context.
func (c *Crawler) SameHost(ctx context.Context, startURL string, maxPages, maxDepth int) ([]string, error) {
	start, err := parseStartURL(startURL)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var order []string
	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && len(order) < maxPages {
		if err := ctx.Err(); err != nil {
			return order, err
		}
		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		// The page budget counts every visited URL, fetched or not, so a run
		// of dead links cannot extend the crawl.
		order = append(order, item.url)

		if len(order) > 1 {
			if err := c.pace(ctx); err != nil {
				return order, err
			}
		}

		html, _, err := c.fetcher.Static(ctx, item.url)
		if err != nil {
			if c.logger != nil {
				c.logger.WithField("url", item.url).WithError(err).Warn("Page fetch failed, no links followed")
			}
			continue
		}

		if item.depth >= maxDepth {
			continue
		}
		for _, link := range extractLinks(html, item.url) {
			if !visited[link] {
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
		}
	}

	return order, nil
}

// Enhanced crawls breadth-first from startURL building a full site graph:
// every visited page becomes a scored node, including pages that failed to
// fetch (scored zero so the audit accounts for them).
func (c *Crawler) Enhanced(ctx context.Context, startURL string, maxPages, maxDepth int) (*SiteGraph, error) {
	start, err := parseStartURL(startURL)
	if err != nil {
		return nil, err
	}

	graph := &SiteGraph{
		StartURL:  start.String(),
		CrawledAt: time.Now().UTC(),
		Pages:     make(map[string]*PageNode),
		Edges:     make(map[string][]string),
	}

	visited := make(map[string]bool)
	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && len(graph.Pages) < maxPages {
		if err := ctx.Err(); err != nil {
			return graph, err
		}
		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		if len(graph.Pages) > 0 {
			if err := c.pace(ctx); err != nil {
				return graph, err
			}
		}

		node := c.crawlPage(ctx, item)
		graph.Pages[node.URL] = node
		if len(node.Links) > 0 {
			graph.Edges[node.URL] = node.Links
		}

		if item.depth >= maxDepth {
			continue
		}
		for _, link := range node.Links {
			if !visited[link] {
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
		}
	}

	return graph, nil
}

func (c *Crawler) crawlPage(ctx context.Context, item queueItem) *PageNode {
	node := &PageNode{URL: item.url, Depth: item.depth}

	result := c.fetcher.Hybrid(ctx, item.url)
	if result.HTML == "" {
		node.FetchError = "fetch failed or empty page"
		node.NeedsJS = result.NeedsJS
		if c.logger != nil {
			c.logger.WithField("url", item.url).Warn("Page yielded no content")
		}
		return node
	}

	node.HTML = result.HTML
	node.ContentType = result.ContentType
	node.ResponseTimeMs = result.ResponseTimeMs
	node.NeedsJS = result.NeedsJS
	node.Interactions = result.Interactions
	node.ScreenshotPath = result.ScreenshotPath
	node.Title = extract.Title(result.HTML)
	node.WordCount = len(strings.Fields(extract.Text(result.HTML)))
	structured := extract.Structured(result.HTML, item.url)
	node.FormCount = structured.FormCount
	node.TrustSignals = structured.TrustSignals
	node.Links = extractLinks(result.HTML, item.url)
	node.LinkCount = len(node.Links)
	for _, block := range extract.Blocks(result.HTML) {
		node.CTATexts = append(node.CTATexts, block.CTAs...)
	}
	node.CTATexts = dedupe(node.CTATexts)
	node.FrictionScore = FrictionScore(node)

	return node
}

func (c *Crawler) pace(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseStartURL(startURL string) (*url.URL, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("crawl: parse start URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("crawl %s: %w", startURL, fetch.ErrInvalidURL)
	}
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed, nil
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
