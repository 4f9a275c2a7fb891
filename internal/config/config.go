package config

import (
	"time"

	"journeylens/internal/fetch"
	"journeylens/pkg/config"
	"journeylens/pkg/llm"
)

// Config stores environment configuration for JourneyLens. It is built once
// in main and passed down; core packages never read the environment.
type Config struct {
	Port          string
	LLM           llm.Config
	MaxPages      int
	MaxDepth      int
	CrawlDelay    time.Duration
	FetchTimeout  time.Duration
	MaxRetries    int
	RenderPolicy  fetch.RenderPolicy
	ScreenshotDir string
	UserAgent     string

	// BlockPrivateHosts refuses crawl targets that resolve into private or
	// reserved address space. Off by default so local testing works.
	BlockPrivateHosts bool
}

// LoadConfig loads the JourneyLens configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:          config.GetEnv("PORT", "8080"),
		LLM:           llm.LoadConfig(),
		MaxPages:      config.GetEnvInt("CRAWL_MAX_PAGES", 3),
		MaxDepth:      config.GetEnvInt("CRAWL_MAX_DEPTH", 1),
		CrawlDelay:    config.GetEnvDuration("CRAWL_DELAY", 500*time.Millisecond),
		FetchTimeout:  config.GetEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		MaxRetries:    config.GetEnvInt("FETCH_MAX_RETRIES", 2),
		RenderPolicy:  parseRenderPolicy(config.GetEnv("RENDER_POLICY", "never")),
		ScreenshotDir: config.GetEnv("SCREENSHOT_DIR", ""),
		UserAgent:     config.GetEnv("FETCH_USER_AGENT", ""),

		BlockPrivateHosts: config.GetEnvBool("FETCH_BLOCK_PRIVATE", false),
	}
}

func parseRenderPolicy(s string) fetch.RenderPolicy {
	if s == "auto" {
		return fetch.RenderAuto
	}
	return fetch.RenderNever
}
