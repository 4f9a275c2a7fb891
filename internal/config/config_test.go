package config

import (
	"testing"
	"time"

	"journeylens/internal/fetch"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MaxPages != 3 || cfg.MaxDepth != 1 {
		t.Errorf("crawl bounds = (%d, %d), want (3, 1)", cfg.MaxPages, cfg.MaxDepth)
	}
	if cfg.CrawlDelay != 500*time.Millisecond {
		t.Errorf("CrawlDelay = %v", cfg.CrawlDelay)
	}
	if cfg.RenderPolicy != fetch.RenderNever {
		t.Errorf("RenderPolicy = %v, want RenderNever", cfg.RenderPolicy)
	}
	if cfg.BlockPrivateHosts {
		t.Error("BlockPrivateHosts should default to false")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CRAWL_MAX_PAGES", "7")
	t.Setenv("RENDER_POLICY", "auto")
	t.Setenv("CRAWL_DELAY", "2s")

	cfg := LoadConfig()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxPages != 7 {
		t.Errorf("MaxPages = %d", cfg.MaxPages)
	}
	if cfg.RenderPolicy != fetch.RenderAuto {
		t.Errorf("RenderPolicy = %v, want RenderAuto", cfg.RenderPolicy)
	}
	if cfg.CrawlDelay != 2*time.Second {
		t.Errorf("CrawlDelay = %v", cfg.CrawlDelay)
	}
}
