// Package llm turns free-text shopping queries into structured descriptors
// using hosted language models, with failover between providers.
package llm

import "context"

// Provider defines the interface for single-turn text completion.
// Each implementation converts between these types and its SDK's formats.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini", "claude").
	Name() string

	// Complete sends a prompt and returns the model's text reply.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains input for a single completion
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string

	// MaxTokens limits the response length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse contains the model's reply
type CompletionResponse struct {
	Content    string
	StopReason string
}
