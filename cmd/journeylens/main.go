package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"journeylens/internal/analysis"
	jlconfig "journeylens/internal/config"
	"journeylens/internal/crawl"
	"journeylens/internal/fetch"
	"journeylens/internal/server"
	"journeylens/pkg/config"
	"journeylens/pkg/llm"
	"journeylens/pkg/logging"
)

func main() {
	var (
		oneShotURL = flag.String("url", "", "analyze a single site and print the report instead of serving")
		mode       = flag.String("mode", "experience", "one-shot report: experience, journey, actions, or crawl")
		goal       = flag.String("goal", "", "business goal for one-shot analysis, e.g. 'Book a call'")
		pages      = flag.Int("pages", 0, "override max pages for one-shot analysis")
		depth      = flag.Int("depth", -1, "override max depth for one-shot analysis")
	)
	flag.Parse()

	logger := logging.NewLoggerWithService("journeylens")
	config.LoadEnv(logger)

	cfg := jlconfig.LoadConfig()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create LLM provider")
	}

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	if cfg.BlockPrivateHosts {
		httpClient.Transport = fetch.NewGuardedTransport()
	}
	fetchOpts := []fetch.Option{
		fetch.WithClient(httpClient),
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithRenderPolicy(cfg.RenderPolicy),
		fetch.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RenderPolicy == fetch.RenderAuto {
		browserOpts := []fetch.BrowserOption{fetch.WithBrowserLogger(logger)}
		if cfg.ScreenshotDir != "" {
			browserOpts = append(browserOpts, fetch.WithScreenshotDir(cfg.ScreenshotDir))
		}
		browser, err := fetch.NewBrowser(browserOpts...)
		if err != nil {
			logger.WithError(err).Warn("Headless browser unavailable, falling back to static fetching")
		} else {
			defer browser.Close()
			fetchOpts = append(fetchOpts, fetch.WithBrowser(browser))
		}
	}
	fetcher := fetch.New(fetchOpts...)

	crawler := crawl.New(fetcher, crawl.WithDelay(cfg.CrawlDelay), crawl.WithLogger(logger))
	analyzer := analysis.New(crawler, provider, analysis.WithLogger(logger))

	if *oneShotURL != "" {
		runOneShot(logger, analyzer, crawler, cfg, *oneShotURL, *mode, *goal, *pages, *depth)
		return
	}

	logger.WithField("port", cfg.Port).Info("Starting JourneyLens API")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	server.New(analyzer, crawler, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

func runOneShot(logger logging.Logger, analyzer *analysis.Analyzer, crawler *crawl.Crawler, cfg jlconfig.Config, url, mode, goal string, pages, depth int) {
	req := analysis.Request{
		URL:      url,
		Goal:     goal,
		MaxPages: cfg.MaxPages,
		MaxDepth: cfg.MaxDepth,
	}
	if pages > 0 {
		req.MaxPages = pages
	}
	if depth >= 0 {
		req.MaxDepth = depth
	}

	if cfg.BlockPrivateHosts {
		if _, err := fetch.ValidateTarget(req.URL); err != nil {
			logger.WithError(err).Fatal("Refusing crawl target")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var report any
	var err error
	switch mode {
	case "experience":
		report, err = analyzer.Experience(ctx, req)
	case "journey":
		report, err = analyzer.Journey(ctx, req)
	case "actions":
		report, err = analyzer.Actions(ctx, req)
	case "crawl":
		var graph *crawl.SiteGraph
		graph, err = crawler.Enhanced(ctx, req.URL, req.MaxPages, req.MaxDepth)
		if err == nil {
			report = map[string]any{
				"analysis": crawl.AnalyzeFrictionPatterns(graph),
				"graph":    graph,
			}
		}
	default:
		logger.WithField("mode", mode).Fatal("Unknown mode")
	}
	if err != nil {
		logger.WithError(err).Fatal("Analysis failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.WithError(err).Fatal("Failed to encode report")
	}
}
