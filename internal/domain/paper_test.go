package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SourceType
		wantOK  bool
	}{
		{name: "arxiv", input: "arxiv", want: SourceTypeArXiv, wantOK: true},
		{name: "semantic scholar", input: "semantic_scholar", want: SourceTypeSemanticScholar, wantOK: true},
		{name: "uppercase", input: "PubMed", want: SourceTypePubMed, wantOK: true},
		{name: "surrounding whitespace", input: "  crossref ", want: SourceTypeCrossRef, wantOK: true},
		{name: "core", input: "core", want: SourceTypeCORE, wantOK: true},
		{name: "unknown", input: "scholarpedia", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSourceType(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normalized", input: "attention is all you need", want: "attention is all you need"},
		{name: "case and punctuation", input: "Attention Is All You Need!!", want: "attention is all you need"},
		{name: "internal newlines", input: "Deep\n  Residual   Learning", want: "deep residual learning"},
		{name: "hyphens and colons", input: "BERT: Pre-training of Deep Bidirectional Transformers", want: "bert pretraining of deep bidirectional transformers"},
		{name: "digits preserved", input: "GPT-4 Technical Report", want: "gpt4 technical report"},
		{name: "only punctuation", input: "!?!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.input))
		})
	}
}

func TestPaperNormalize(t *testing.T) {
	t.Run("empty title becomes Untitled", func(t *testing.T) {
		p := Paper{Source: SourceTypeArXiv, Year: 2021}
		p.Normalize()
		assert.Equal(t, UntitledFallback, p.Title)
	})

	t.Run("whitespace-only title becomes Untitled", func(t *testing.T) {
		p := Paper{Title: "  \n\t ", Source: SourceTypeCORE, Year: 2021}
		p.Normalize()
		assert.Equal(t, UntitledFallback, p.Title)
	})

	t.Run("missing year falls back to current year", func(t *testing.T) {
		p := Paper{Title: "Some Paper", Source: SourceTypePubMed}
		p.Normalize()
		assert.Equal(t, time.Now().Year(), p.Year)
	})

	t.Run("negative citation count clamped to zero", func(t *testing.T) {
		p := Paper{Title: "Some Paper", Source: SourceTypeCrossRef, Year: 2019, CitationCount: -1}
		p.Normalize()
		assert.Equal(t, 0, p.CitationCount)
	})

	t.Run("well-formed record unchanged", func(t *testing.T) {
		p := Paper{Title: "Some Paper", Source: SourceTypeArXiv, Year: 2019, CitationCount: 42}
		p.Normalize()
		assert.Equal(t, "Some Paper", p.Title)
		assert.Equal(t, 2019, p.Year)
		assert.Equal(t, 42, p.CitationCount)
	})
}
