// Package summarizer produces short summaries of papers from their title and
// abstract.
//
// With an LLM completion client configured, summaries are generated by the
// model. Without one, or when the model call fails, the summarizer degrades to
// an extractive summary built from the leading sentences of the abstract.
// Summarization never returns an error.
package summarizer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openscholar/paper-search-service/internal/llm"
	"github.com/openscholar/paper-search-service/internal/observability"
)

const (
	// ModeLLM marks a summary produced by the language model.
	ModeLLM = "llm"

	// ModeExtractive marks a summary assembled from the abstract itself.
	ModeExtractive = "extractive"

	// systemPrompt instructs the model on its role.
	systemPrompt = "You summarize academic papers. Given a title and abstract, " +
		"write a 2-3 sentence summary of the paper's contribution in plain " +
		"language. Respond with the summary only."

	// maxCompletionTokens bounds the summary length.
	maxCompletionTokens = 256

	// temperature keeps summaries factual.
	temperature = 0.2

	// extractiveSentences is how many leading sentences the fallback keeps.
	extractiveSentences = 3
)

// Summary is a generated paper summary and how it was produced.
type Summary struct {
	// Text is the summary text.
	Text string `json:"text"`

	// Mode is "llm" or "extractive".
	Mode string `json:"mode"`
}

// Summarizer generates paper summaries.
type Summarizer struct {
	completer llm.Completer
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New creates a Summarizer. completer may be nil, in which case every summary
// is extractive.
func New(completer llm.Completer, logger zerolog.Logger, metrics *observability.Metrics) *Summarizer {
	return &Summarizer{
		completer: completer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Summarize returns a summary of the paper. It never returns an error: model
// failures degrade to the extractive fallback.
func (s *Summarizer) Summarize(ctx context.Context, title, abstract string) Summary {
	if s.completer == nil {
		return s.extractive(title, abstract)
	}

	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(title)
	if abstract != "" {
		sb.WriteString("\n\nAbstract: ")
		sb.WriteString(abstract)
	}

	result, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      sb.String(),
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("title", title).
			Msg("LLM summarization failed, falling back to extractive summary")
		return s.extractive(title, abstract)
	}

	text := strings.TrimSpace(result.Content)
	if text == "" {
		return s.extractive(title, abstract)
	}

	if s.metrics != nil {
		s.metrics.RecordSummary(ModeLLM)
		s.metrics.RecordLLMUsage("summarize", result.Model, result.InputTokens, result.OutputTokens)
	}

	return Summary{Text: text, Mode: ModeLLM}
}

// extractive builds a summary from the leading sentences of the abstract,
// falling back to the title when there is no abstract.
func (s *Summarizer) extractive(title, abstract string) Summary {
	if s.metrics != nil {
		s.metrics.RecordSummary(ModeExtractive)
	}

	text := strings.TrimSpace(abstract)
	if text == "" {
		return Summary{Text: strings.TrimSpace(title), Mode: ModeExtractive}
	}

	return Summary{Text: leadingSentences(text, extractiveSentences), Mode: ModeExtractive}
}

// leadingSentences returns the first n sentences of text, splitting on
// terminal punctuation. Abbreviation-aware splitting is deliberately out of
// scope; abstracts tolerate the occasional over-split.
func leadingSentences(text string, n int) string {
	var sb strings.Builder
	count := 0

	for i, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Sentence ends at terminal punctuation followed by space or EOF.
			if i+1 >= len(text) || text[i+1] == ' ' {
				count++
				if count >= n {
					break
				}
			}
		}
	}

	return strings.TrimSpace(sb.String())
}
