package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"journeylens/internal/analysis"
	"journeylens/internal/crawl"
	"journeylens/internal/fetch"
	"journeylens/pkg/llm"
)

type staticProvider struct{ response string }

func (s *staticProvider) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return s.response, nil
}

func newTestRouter(response string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	crawler := crawl.New(fetch.New(fetch.WithMaxRetries(0)), crawl.WithDelay(0))
	analyzer := analysis.New(crawler, &staticProvider{response: response})
	router := gin.New()
	New(analyzer, crawler, nil).RegisterRoutes(router)
	return router
}

func TestHealthz(t *testing.T) {
	router := newTestRouter("{}")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMissingURLRejected(t *testing.T) {
	router := newTestRouter("{}")
	for _, path := range []string{"/v1/experience", "/v1/journey", "/v1/actions", "/v1/crawl"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"goal":"g"}`)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
}

func TestInvalidBodyRejected(t *testing.T) {
	router := newTestRouter("{}")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/experience", strings.NewReader("not json")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRequestBounds(t *testing.T) {
	five := 5
	fifty := 50
	neg := -1
	tests := []struct {
		name      string
		in        analyzeRequest
		wantPages int
		wantDepth int
	}{
		{"defaults", analyzeRequest{URL: "https://x"}, 3, 1},
		{"explicit", analyzeRequest{URL: "https://x", MaxPages: &five, MaxDepth: &five}, 5, 3},
		{"over cap", analyzeRequest{URL: "https://x", MaxPages: &fifty}, 15, 1},
		{"under floor", analyzeRequest{URL: "https://x", MaxPages: &neg, MaxDepth: &neg}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := tt.in.bounded()
			if !ok {
				t.Fatal("bounded rejected valid request")
			}
			if req.MaxPages != tt.wantPages || req.MaxDepth != tt.wantDepth {
				t.Errorf("bounds = (%d, %d), want (%d, %d)", req.MaxPages, req.MaxDepth, tt.wantPages, tt.wantDepth)
			}
		})
	}
}

func TestExperienceEndToEnd(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>T</title></head><body><section><h1>Hello</h1><p>` +
			strings.Repeat("welcome words here ", 30) + `</p><a href="/go">Get Started</a></section></body></html>`))
	}))
	defer site.Close()

	router := newTestRouter(`{"items":[{"behavior":"Reads headline","priority":7}],"timeline":[]}`)
	w := httptest.NewRecorder()
	body := `{"url":"` + site.URL + `","max_pages":1,"max_depth":0}`
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/experience", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report analysis.ExperienceReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(report.Items) != 1 || report.Items[0].Behavior != "Reads headline" {
		t.Errorf("report = %+v", report)
	}
}

func TestCrawlEndpoint(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>T</title></head><body><p>` +
			strings.Repeat("crawlable content ", 40) + `</p></body></html>`))
	}))
	defer site.Close()

	router := newTestRouter("{}")
	w := httptest.NewRecorder()
	body := `{"url":"` + site.URL + `","max_pages":1,"max_depth":0,"include_graph":true}`
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/crawl", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Analysis *crawl.FrictionAnalysis `json:"analysis"`
		Graph    json.RawMessage         `json:"graph"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Analysis == nil {
		t.Fatal("missing analysis")
	}
	if len(resp.Graph) == 0 {
		t.Error("include_graph should embed the exported graph")
	}
}
