package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestProvider(serverURL string, maxRetries int) *OpenAIProvider {
	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: serverURL,
	}, 5*time.Second, maxRetries)
	p.retryDelay = 10 * time.Millisecond
	return p
}

func openAICompletion(content string) string {
	resp := chatResponse{
		ID: "chatcmpl-test",
		Choices: []chatChoice{
			{Message: chatMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
		Usage: chatUsage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30},
	}
	body, _ := json.Marshal(resp)
	return string(body)
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, 128, req.MaxTokens)

		_, _ = w.Write([]byte(openAICompletion("quantum error correction surface codes")))
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 0)
	result, err := provider.Complete(context.Background(), CompletionRequest{
		System:    "You rewrite search queries.",
		Prompt:    "quantum computing",
		MaxTokens: 128,
	})
	require.NoError(t, err)

	assert.Equal(t, "quantum error correction surface codes", result.Content)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, 20, result.InputTokens)
	assert.Equal(t, 10, result.OutputTokens)
}

func TestOpenAICompleteNoSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		_, _ = w.Write([]byte(openAICompletion("ok")))
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 0)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
}

func TestOpenAICompleteRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
			return
		}
		_, _ = w.Write([]byte(openAICompletion("retried fine")))
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 2)
	result, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "retried fine", result.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAICompleteNonTransientNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 3)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid api key", apiErr.Message)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.False(t, apiErr.IsTransient())
}

func TestOpenAICompleteSingleAttemptWhenRetriesDisabled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 0)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "transient failures make exactly one attempt")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestOpenAICompleteExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 1)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "chatcmpl-test", "choices": []}`))
	}))
	defer server.Close()

	provider := newOpenAITestProvider(server.URL, 0)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestOpenAIProviderMetadata(t *testing.T) {
	provider := NewOpenAIProvider(OpenAIConfig{}, 0, 0)
	assert.Equal(t, "openai", provider.Provider())
	assert.Equal(t, defaultOpenAIModel, provider.Model())
}
