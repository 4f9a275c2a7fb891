package llm

import "context"

// Message is a single chat turn sent to a completion API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider sends a conversation to a chat-completion API and returns the
// model's full text response. The response is treated as opaque text; JSON
// recovery and repair happen downstream. Implementations never retry — a
// failed call surfaces directly to the caller.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
