package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicProviderComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("expected api key header")
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Errorf("expected version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System != "be terse" {
			t.Errorf("expected system prompt lifted out, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected single user message, got %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"ok\":true}"}]}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider(Config{APIURL: server.URL, APIKey: "test-key", Model: "claude-test"})
	out, err := provider.Complete(context.Background(), []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "analyze"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestNewProviderFactory(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"openai", "anthropic", "ollama", "OpenAI"} {
		if _, err := NewProvider(Config{Provider: name, Model: "m"}); err != nil {
			t.Fatalf("provider %q: %v", name, err)
		}
	}
	if _, err := NewProvider(Config{Provider: "mystery"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
