package summarizer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/openscholar/paper-search-service/internal/llm"
)

// stubCompleter returns a fixed completion or error.
type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResult{Content: s.content, Model: "stub-model"}, nil
}

func (s *stubCompleter) Provider() string { return "stub" }
func (s *stubCompleter) Model() string    { return "stub-model" }

const abstract = "We introduce a new attention mechanism. It scales linearly with " +
	"sequence length. Experiments show strong results on long documents. " +
	"Code is available online."

func TestSummarizeLLM(t *testing.T) {
	s := New(&stubCompleter{content: " A linear attention mechanism for long documents. "}, zerolog.Nop(), nil)

	summary := s.Summarize(context.Background(), "Linear Attention", abstract)
	assert.Equal(t, ModeLLM, summary.Mode)
	assert.Equal(t, "A linear attention mechanism for long documents.", summary.Text)
}

func TestSummarizeNoCompleterIsExtractive(t *testing.T) {
	s := New(nil, zerolog.Nop(), nil)

	summary := s.Summarize(context.Background(), "Linear Attention", abstract)
	assert.Equal(t, ModeExtractive, summary.Mode)
	assert.Equal(t,
		"We introduce a new attention mechanism. It scales linearly with "+
			"sequence length. Experiments show strong results on long documents.",
		summary.Text, "extractive summary keeps the first three sentences")
}

func TestSummarizeLLMErrorFallsBack(t *testing.T) {
	s := New(&stubCompleter{err: errors.New("provider down")}, zerolog.Nop(), nil)

	summary := s.Summarize(context.Background(), "Linear Attention", abstract)
	assert.Equal(t, ModeExtractive, summary.Mode)
	assert.NotEmpty(t, summary.Text)
}

func TestSummarizeEmptyAbstractUsesTitle(t *testing.T) {
	s := New(nil, zerolog.Nop(), nil)

	summary := s.Summarize(context.Background(), "Linear Attention", "")
	assert.Equal(t, ModeExtractive, summary.Mode)
	assert.Equal(t, "Linear Attention", summary.Text)
}

func TestLeadingSentences(t *testing.T) {
	assert.Equal(t, "One. Two.", leadingSentences("One. Two. Three.", 2))
	assert.Equal(t, "Only one sentence.", leadingSentences("Only one sentence.", 3))
	assert.Equal(t, "No terminal punctuation at all", leadingSentences("No terminal punctuation at all", 2))
	assert.Equal(t, "Does it work? Yes!", leadingSentences("Does it work? Yes! Great.", 2))
}
