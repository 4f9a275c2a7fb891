package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"journeylens/pkg/logging"
)

const (
	navTimeout        = 30 * time.Second
	evalTimeout       = 5 * time.Second
	stableDur         = 500 * time.Millisecond
	maxConcurrentTabs = 3
)

// Browser fetches pages through a headless Chromium instance managed by Rod,
// capturing the post-render DOM, interaction counters, and an optional
// screenshot. Create with NewBrowser; call Close when done.
type Browser struct {
	browser       *rod.Browser
	tabSem        chan struct{}
	screenshotDir string
	logger        logging.Logger
}

type BrowserOption func(*Browser)

// WithScreenshotDir enables full-page PNG capture into dir.
func WithScreenshotDir(dir string) BrowserOption {
	return func(b *Browser) { b.screenshotDir = dir }
}

func WithBrowserLogger(l logging.Logger) BrowserOption {
	return func(b *Browser) { b.logger = l }
}

// NewBrowser launches a headless Chromium process via Rod's launcher.
// Returns an error if Chrome/Chromium cannot be started.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	u, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to headless browser: %w", err)
	}

	b := &Browser{
		browser: browser,
		tabSem:  make(chan struct{}, maxConcurrentTabs),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Fetch renders pageURL in a fresh tab and returns the settled DOM together
// with whatever diagnostics could be captured. Navigation failure is the only
// hard error; missing screenshots, timings, or interaction counters degrade
// to zero values.
func (b *Browser) Fetch(ctx context.Context, pageURL string) (Result, error) {
	select {
	case b.tabSem <- struct{}{}:
		defer func() { <-b.tabSem }()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return Result{}, fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()

	if _, err := page.EvalOnNewDocument(trackerScript); err != nil {
		b.debugf(pageURL, err, "install interaction tracker")
	}

	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()
	page = page.Context(navCtx)

	start := time.Now()
	if err := page.Navigate(pageURL); err != nil {
		return Result{}, fmt.Errorf("navigate to %s: %w", pageURL, err)
	}

	// WaitStable waits until the DOM stops changing; fall back to the load
	// event when a page animates forever.
	if err := page.WaitStable(stableDur); err != nil {
		if err := page.WaitLoad(); err != nil {
			b.debugf(pageURL, err, "wait for load")
		}
	}

	result := Result{
		URL:            pageURL,
		ContentType:    "text/html",
		ResponseTimeMs: float64(time.Since(start).Milliseconds()),
		NeedsJS:        true,
	}

	evalCtx, evalCancel := context.WithTimeout(ctx, evalTimeout)
	defer evalCancel()
	evalPage := page.Context(evalCtx)

	if ms, err := pageLoadMillis(evalPage); err == nil && ms > 0 {
		result.ResponseTimeMs = ms
	}

	if inter, err := readInteractions(evalPage); err == nil {
		result.Interactions = inter
	} else {
		b.debugf(pageURL, err, "read interaction counters")
	}

	if b.screenshotDir != "" {
		if path, err := b.capture(page, pageURL); err == nil {
			result.ScreenshotPath = path
		} else {
			b.debugf(pageURL, err, "capture screenshot")
		}
	}

	html, err := page.HTML()
	if err != nil {
		b.debugf(pageURL, err, "read rendered HTML")
	} else {
		result.HTML = html
	}

	return result, nil
}

func pageLoadMillis(page *rod.Page) (float64, error) {
	res, err := page.Eval(`() => {
		const t = performance.timing;
		return t.loadEventEnd > 0 ? t.loadEventEnd - t.navigationStart : 0;
	}`)
	if err != nil {
		return 0, err
	}
	return res.Value.Num(), nil
}

func readInteractions(page *rod.Page) (*Interactions, error) {
	res, err := page.Eval(`() => JSON.stringify(window.__journeylens || {})`)
	if err != nil {
		return nil, err
	}
	var inter Interactions
	if err := json.Unmarshal([]byte(res.Value.Str()), &inter); err != nil {
		return nil, fmt.Errorf("decode interaction counters: %w", err)
	}
	return &inter, nil
}

func (b *Browser) capture(page *rod.Page, pageURL string) (string, error) {
	if err := os.MkdirAll(b.screenshotDir, 0o755); err != nil {
		return "", err
	}
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", err
	}
	path := filepath.Join(b.screenshotDir, screenshotName(pageURL))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func screenshotName(pageURL string) string {
	host := "page"
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		host = strings.ReplaceAll(parsed.Host, ":", "_")
	}
	return fmt.Sprintf("%s_%d.png", host, time.Now().UnixMilli())
}

func (b *Browser) debugf(pageURL string, err error, step string) {
	if b.logger == nil {
		return
	}
	b.logger.WithField("url", pageURL).WithError(err).Debug("Browser fetch: " + step)
}

// Close shuts down the headless browser process.
func (b *Browser) Close() {
	_ = b.browser.Close()
}
