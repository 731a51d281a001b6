package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openscholar/paper-search-service/internal/domain"
)

func paper(id, title string, citations int) *domain.Paper {
	return &domain.Paper{
		ID:            id,
		Source:        domain.SourceTypeArXiv,
		Title:         title,
		CitationCount: citations,
		Year:          2020,
	}
}

func TestDeduplicateFirstOccurrenceWins(t *testing.T) {
	papers := []*domain.Paper{
		paper("a", "Attention Is All You Need", 100),
		paper("b", "attention is all you need!!", 5),
		paper("c", "BERT Pre-training", 50),
	}

	kept, duplicates := Deduplicate(papers)
	require.Len(t, kept, 2)
	assert.Equal(t, 1, duplicates)
	assert.Equal(t, "a", kept[0].ID, "the first occurrence is kept")
	assert.Equal(t, "c", kept[1].ID)
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	papers := []*domain.Paper{
		paper("1", "First Paper Title", 0),
		paper("2", "Second Paper Title", 0),
		paper("3", "first paper title", 0),
		paper("4", "Third Paper Title", 0),
	}

	kept, duplicates := Deduplicate(papers)
	assert.Equal(t, 1, duplicates)

	ids := make([]string, 0, len(kept))
	for _, p := range kept {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "2", "4"}, ids)
}

func TestDeduplicateShortKeysNeverDeduplicate(t *testing.T) {
	papers := []*domain.Paper{
		paper("a", "Go", 0),
		paper("b", "Go", 0),
		paper("c", "??", 0),
		paper("d", "!!", 0),
	}

	kept, duplicates := Deduplicate(papers)
	assert.Len(t, kept, 4, "degenerate titles are duplicates of nothing")
	assert.Equal(t, 0, duplicates)
}

func TestDeduplicateEmpty(t *testing.T) {
	kept, duplicates := Deduplicate(nil)
	assert.Empty(t, kept)
	assert.Equal(t, 0, duplicates)
}
