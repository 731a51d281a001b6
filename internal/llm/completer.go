// Package llm provides chat-completion clients for large language model
// providers (OpenAI, Anthropic) behind a single Completer interface.
//
// Callers send a bounded prompt (system instructions, user text, max output
// tokens) and receive the completion text plus usage metadata. The package is
// plumbing only: prompt engineering belongs to the callers (query enhancement,
// paper summarization).
package llm

import (
	"context"
	"errors"
)

// CompletionRequest contains the parameters for a single chat completion.
type CompletionRequest struct {
	// System is the system-level instruction for the model (optional).
	System string

	// Prompt is the user message content.
	Prompt string

	// MaxTokens bounds the completion length. Zero means the provider default.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// CompletionResult contains the completion text and usage metadata.
type CompletionResult struct {
	// Content is the completion text.
	Content string

	// Model is the model that produced the completion.
	Model string

	// InputTokens is the number of prompt tokens consumed.
	InputTokens int

	// OutputTokens is the number of completion tokens produced.
	OutputTokens int
}

// Completer defines the interface for LLM chat completion.
//
// Implementations should handle provider-specific API calls, response parsing,
// and retry of transient errors while conforming to this unified interface.
type Completer interface {
	// Complete sends the request and returns the completion.
	// The context should be used for cancellation and deadline propagation.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// Provider returns the name of the LLM provider (e.g., "openai", "anthropic").
	Provider() string

	// Model returns the model identifier being used.
	Model() string
}

// isTransientError returns true if the error is an APIError that may succeed
// on retry.
func isTransientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}
	return false
}
