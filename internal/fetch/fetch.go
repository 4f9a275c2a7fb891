// Package fetch acquires page HTML for the crawler: a plain HTTP path with
// retry and backoff, and an optional headless-browser path for pages that
// need JavaScript to produce content.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"journeylens/pkg/logging"
)

const (
	maxPageBytes   = 10 << 20 // 10 MB
	defaultUA      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"
	initialBackoff = 1 * time.Second
)

// ErrInvalidURL marks URLs whose scheme is not http or https. It is returned
// before any network attempt and never consumes a retry.
var ErrInvalidURL = errors.New("url must use http or https")

// FetchError wraps the last underlying cause after the retry budget is spent.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the outcome of fetching a single page. Immutable once returned.
type Result struct {
	URL            string        `json:"url"`
	HTML           string        `json:"html"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
	Interactions   *Interactions `json:"interaction_data,omitempty"`
	ContentType    string        `json:"content_type"`
	ResponseTimeMs float64       `json:"response_time_ms,omitempty"`
	NeedsJS        bool          `json:"needs_js"`
}

// DynamicFetcher renders a page in a real browser. *Browser implements it;
// tests substitute fakes.
type DynamicFetcher interface {
	Fetch(ctx context.Context, pageURL string) (Result, error)
	Close()
}

// RenderPolicy decides when the hybrid path escalates to the browser.
type RenderPolicy int

const (
	// RenderNever keeps hybrid fetches on plain HTTP. The JS heuristic is
	// still evaluated and recorded so downstream scoring sees it.
	RenderNever RenderPolicy = iota
	// RenderAuto escalates to the browser when the heuristic fires.
	RenderAuto
)

type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	policy     RenderPolicy
	browser    DynamicFetcher
	logger     logging.Logger
}

type Option func(*Fetcher)

func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

func WithMaxRetries(n int) Option {
	return func(f *Fetcher) { f.maxRetries = n }
}

func WithRenderPolicy(p RenderPolicy) Option {
	return func(f *Fetcher) { f.policy = p }
}

func WithBrowser(b DynamicFetcher) Option {
	return func(f *Fetcher) { f.browser = b }
}

func WithLogger(l logging.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: 20 * time.Second},
		userAgent:  defaultUA,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Static GETs a URL and returns the decoded body and content type. Transient
// failures (network errors and non-2xx statuses) are retried with exponential
// backoff starting at one second. The content-type check is advisory —
// non-HTML bodies are still returned as text.
func (f *Fetcher) Static(ctx context.Context, pageURL string) (string, string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", "", fmt.Errorf("fetch %s: %w", pageURL, ErrInvalidURL)
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", "", ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}

		body, contentType, err := f.doGet(ctx, pageURL)
		if err == nil {
			return body, contentType, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		if f.logger != nil {
			f.logger.WithField("url", pageURL).WithField("attempt", attempt+1).WithError(err).Debug("Static fetch attempt failed")
		}
	}

	return "", "", &FetchError{URL: pageURL, Attempts: f.maxRetries + 1, Err: lastErr}
}

func (f *Fetcher) doGet(ctx context.Context, pageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), contentType)
	if err != nil {
		// Undetectable charset: read raw bytes rather than failing the page.
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		if readErr != nil {
			return "", "", readErr
		}
		return string(raw), contentType, nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", err
	}
	return string(data), contentType, nil
}

// Hybrid fetches a page under the configured render policy. It never returns
// an error: a failed static fetch degrades to an empty-HTML result so a crawl
// can account for the page instead of aborting.
func (f *Fetcher) Hybrid(ctx context.Context, pageURL string) Result {
	start := time.Now()
	html, contentType, err := f.Static(ctx, pageURL)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		if f.logger != nil {
			f.logger.WithField("url", pageURL).WithError(err).Warn("Static fetch failed, returning empty result")
		}
		return Result{URL: pageURL, ContentType: "text/html"}
	}

	needsJS := NeedsRendering(html)
	result := Result{
		URL:            pageURL,
		HTML:           html,
		ContentType:    firstNonEmpty(contentType, "text/html"),
		ResponseTimeMs: elapsed,
		NeedsJS:        needsJS,
	}

	if f.policy == RenderAuto && needsJS && f.browser != nil {
		rendered, renderErr := f.browser.Fetch(ctx, pageURL)
		if renderErr != nil {
			if f.logger != nil {
				f.logger.WithField("url", pageURL).WithError(renderErr).Warn("Dynamic fetch failed, keeping static result")
			}
			return result
		}
		rendered.NeedsJS = true
		return rendered
	}

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
