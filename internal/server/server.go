// Package server exposes the analyzers over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"journeylens/internal/analysis"
	"journeylens/internal/crawl"
	"journeylens/pkg/logging"
)

const (
	defaultMaxPages = 3
	defaultMaxDepth = 1
	maxPagesCap     = 15
	maxDepthCap     = 3
)

type API struct {
	analyzer *analysis.Analyzer
	crawler  *crawl.Crawler
	logger   logging.Logger
}

func New(analyzer *analysis.Analyzer, crawler *crawl.Crawler, logger logging.Logger) *API {
	return &API{analyzer: analyzer, crawler: crawler, logger: logger}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", a.handleHealth)
	v1 := router.Group("/v1")
	v1.POST("/experience", a.handleExperience)
	v1.POST("/journey", a.handleJourney)
	v1.POST("/actions", a.handleActions)
	v1.POST("/crawl", a.handleCrawl)
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type analyzeRequest struct {
	URL      string `json:"url"`
	Goal     string `json:"goal"`
	MaxPages *int   `json:"max_pages"`
	MaxDepth *int   `json:"max_depth"`
}

// bounded applies the original request contract: url required, max_pages in
// [1,15] defaulting to 3, max_depth in [0,3] defaulting to 1.
func (r *analyzeRequest) bounded() (analysis.Request, bool) {
	if r.URL == "" {
		return analysis.Request{}, false
	}
	req := analysis.Request{
		URL:      r.URL,
		Goal:     r.Goal,
		MaxPages: defaultMaxPages,
		MaxDepth: defaultMaxDepth,
	}
	if r.MaxPages != nil {
		req.MaxPages = *r.MaxPages
	}
	if r.MaxDepth != nil {
		req.MaxDepth = *r.MaxDepth
	}
	if req.MaxPages < 1 {
		req.MaxPages = 1
	}
	if req.MaxPages > maxPagesCap {
		req.MaxPages = maxPagesCap
	}
	if req.MaxDepth < 0 {
		req.MaxDepth = 0
	}
	if req.MaxDepth > maxDepthCap {
		req.MaxDepth = maxDepthCap
	}
	return req, true
}

func (a *API) bindRequest(c *gin.Context) (analysis.Request, bool) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return analysis.Request{}, false
	}
	req, ok := body.bounded()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return analysis.Request{}, false
	}
	return req, true
}

func (a *API) handleExperience(c *gin.Context) {
	req, ok := a.bindRequest(c)
	if !ok {
		return
	}
	report, err := a.analyzer.Experience(c.Request.Context(), req)
	if err != nil {
		a.fail(c, req.URL, err, "experience analysis failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *API) handleJourney(c *gin.Context) {
	req, ok := a.bindRequest(c)
	if !ok {
		return
	}
	report, err := a.analyzer.Journey(c.Request.Context(), req)
	if err != nil {
		a.fail(c, req.URL, err, "journey analysis failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *API) handleActions(c *gin.Context) {
	req, ok := a.bindRequest(c)
	if !ok {
		return
	}
	report, err := a.analyzer.Actions(c.Request.Context(), req)
	if err != nil {
		a.fail(c, req.URL, err, "action analysis failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

type crawlResponse struct {
	Analysis *crawl.FrictionAnalysis `json:"analysis"`
	Graph    json.RawMessage         `json:"graph,omitempty"`
}

func (a *API) handleCrawl(c *gin.Context) {
	var body struct {
		analyzeRequest
		IncludeGraph bool `json:"include_graph"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req, ok := body.bounded()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	graph, err := a.crawler.Enhanced(c.Request.Context(), req.URL, req.MaxPages, req.MaxDepth)
	if err != nil {
		a.fail(c, req.URL, err, "crawl failed")
		return
	}

	resp := crawlResponse{Analysis: crawl.AnalyzeFrictionPatterns(graph)}
	if body.IncludeGraph {
		data, exportErr := graph.ExportJSON()
		if exportErr != nil {
			a.fail(c, req.URL, exportErr, "graph export failed")
			return
		}
		resp.Graph = data
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) fail(c *gin.Context, url string, err error, msg string) {
	if a.logger != nil {
		a.logger.WithField("url", url).WithError(err).Error("Request failed")
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
