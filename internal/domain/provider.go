package domain

import "context"

// ChatOptions carries per-call generation settings.
type ChatOptions struct {
	Model        string
	SystemPrompt string
	Temperature  float64 // 0 means provider default
	MaxTokens    int
}

// ChatResponse is the normalized result of one provider call.
type ChatResponse struct {
	Content string
	Model   string // model identifier resolved by the backend
	Usage   *Usage
}

// Provider is the interface all LLM gateways implement. Implementations
// are constructed once at startup and must be safe for concurrent use.
type Provider interface {
	// SendMessage sends an ordered conversation to the backend and returns
	// the generated text. A response without textual content is an error.
	SendMessage(ctx context.Context, messages []Message, opts ChatOptions) (*ChatResponse, error)

	// Name returns the provider name ("anthropic" or "openai").
	Name() string

	// Ready reports whether the backend credential is present.
	Ready() bool
}
