package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestStaticFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("expected browser user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := New()
	body, contentType, err := f.Static(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Static returned error: %v", err)
	}
	if !strings.Contains(body, "hello") {
		t.Errorf("unexpected body: %q", body)
	}
	if !strings.HasPrefix(contentType, "text/html") {
		t.Errorf("unexpected content type: %q", contentType)
	}
}

func TestStaticRejectsNonHTTPSchemes(t *testing.T) {
	f := New()
	for _, bad := range []string{"ftp://example.com", "javascript:alert(1)", "file:///etc/passwd"} {
		_, _, err := f.Static(context.Background(), bad)
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Static(%q) error = %v, want ErrInvalidURL", bad, err)
		}
	}
}

func TestStaticRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html><body>eventually</body></html>"))
	}))
	defer srv.Close()

	f := New(WithMaxRetries(2))
	body, _, err := f.Static(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Static returned error after retries: %v", err)
	}
	if !strings.Contains(body, "eventually") {
		t.Errorf("unexpected body: %q", body)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestStaticExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(WithMaxRetries(1))
	_, _, err := f.Static(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", fe.Attempts)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestHybridNeverErrors(t *testing.T) {
	f := New(WithMaxRetries(0))
	result := f.Hybrid(context.Background(), "http://127.0.0.1:1/unreachable")
	if result.HTML != "" {
		t.Errorf("expected empty HTML for unreachable page, got %d bytes", len(result.HTML))
	}
	if result.URL != "http://127.0.0.1:1/unreachable" {
		t.Errorf("unexpected URL: %q", result.URL)
	}
}

type fakeRenderer struct {
	result Result
	err    error
	calls  int
}

func (f *fakeRenderer) Fetch(ctx context.Context, pageURL string) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	r := f.result
	r.URL = pageURL
	return r, nil
}

func (f *fakeRenderer) Close() {}

func TestHybridEscalatesToBrowser(t *testing.T) {
	// Small body trips the rendering heuristic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{result: Result{HTML: "<html><body>rendered content</body></html>"}}
	f := New(WithRenderPolicy(RenderAuto), WithBrowser(renderer))

	result := f.Hybrid(context.Background(), srv.URL)
	if renderer.calls != 1 {
		t.Fatalf("expected 1 browser fetch, got %d", renderer.calls)
	}
	if !strings.Contains(result.HTML, "rendered content") {
		t.Errorf("expected rendered HTML, got %q", result.HTML)
	}
	if !result.NeedsJS {
		t.Error("expected NeedsJS on rendered result")
	}
}

func TestHybridKeepsStaticOnBrowserFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="app"></div></body></html>`))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{err: errors.New("browser crashed")}
	f := New(WithRenderPolicy(RenderAuto), WithBrowser(renderer))

	result := f.Hybrid(context.Background(), srv.URL)
	if !strings.Contains(result.HTML, `id="app"`) {
		t.Errorf("expected static HTML fallback, got %q", result.HTML)
	}
	if !result.NeedsJS {
		t.Error("expected NeedsJS recorded on fallback result")
	}
}

func TestHybridNeverPolicySkipsBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{result: Result{HTML: "rendered"}}
	f := New(WithRenderPolicy(RenderNever), WithBrowser(renderer))

	result := f.Hybrid(context.Background(), srv.URL)
	if renderer.calls != 0 {
		t.Errorf("expected no browser fetches under RenderNever, got %d", renderer.calls)
	}
	if !result.NeedsJS {
		t.Error("heuristic result should still be recorded")
	}
}

func TestInteractionsEventCount(t *testing.T) {
	var nilInter *Interactions
	if got := nilInter.EventCount(); got != 0 {
		t.Errorf("nil EventCount = %d, want 0", got)
	}
	inter := &Interactions{Clicks: 2, Scrolls: 3, Hovers: 1, Inputs: 4, RageClicks: 5}
	if got := inter.EventCount(); got != 10 {
		t.Errorf("EventCount = %d, want 10 (rage clicks excluded)", got)
	}
}
