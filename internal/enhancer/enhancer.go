// Package enhancer rewrites user search queries into more effective academic
// search terms using an LLM.
//
// Enhancement is strictly best-effort: any failure (no provider configured,
// API error, timeout, empty completion) falls back to the original query and
// is logged and counted. A search never fails because enhancement failed.
package enhancer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openscholar/paper-search-service/internal/llm"
	"github.com/openscholar/paper-search-service/internal/observability"
)

const (
	// systemPrompt instructs the model on its role and response shape.
	systemPrompt = "You improve search queries for academic paper databases. " +
		"Rewrite the user's query into a concise search query that adds " +
		"relevant synonyms and technical terms. Respond with the improved " +
		"query text only, no explanation, no quotes."

	// maxCompletionTokens bounds the rewrite; enhanced queries are short.
	maxCompletionTokens = 100

	// temperature keeps rewrites focused rather than creative.
	temperature = 0.3
)

// Enhancer rewrites search queries via an LLM completion client.
type Enhancer struct {
	completer llm.Completer
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New creates an Enhancer. completer may be nil, in which case every call
// returns the original query unchanged.
func New(completer llm.Completer, logger zerolog.Logger, metrics *observability.Metrics) *Enhancer {
	return &Enhancer{
		completer: completer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Enhance returns an improved version of query, or query itself when
// enhancement is unavailable or fails. It never returns an error and makes at
// most one completion attempt per call.
func (e *Enhancer) Enhance(ctx context.Context, query string) string {
	if e.completer == nil {
		return query
	}

	result, err := e.completer.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      query,
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	})
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("query enhancement failed, using original query")
		if e.metrics != nil {
			e.metrics.RecordEnhancement(true)
		}
		return query
	}

	enhanced := strings.TrimSpace(result.Content)
	if enhanced == "" {
		e.logger.Warn().
			Str("query", query).
			Msg("query enhancement returned empty completion, using original query")
		if e.metrics != nil {
			e.metrics.RecordEnhancement(true)
		}
		return query
	}

	if e.metrics != nil {
		e.metrics.RecordEnhancement(false)
		e.metrics.RecordLLMUsage("enhance", result.Model, result.InputTokens, result.OutputTokens)
	}

	e.logger.Debug().
		Str("query", query).
		Str("enhanced_query", enhanced).
		Msg("query enhanced")

	return enhanced
}
