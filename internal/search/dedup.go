package search

import (
	"unicode/utf8"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// minDedupKeyLength is the minimum normalized-title length (in runes) for a
// paper to participate in deduplication. Degenerate near-empty titles carry
// no identity, so they are never treated as duplicates of each other.
const minDedupKeyLength = 3

// Deduplicate removes papers whose normalized title was already seen, keeping
// the first occurrence. Input order is preserved. It returns the kept papers
// and the number discarded.
func Deduplicate(papers []*domain.Paper) ([]*domain.Paper, int) {
	seen := make(map[string]struct{}, len(papers))
	kept := make([]*domain.Paper, 0, len(papers))
	duplicates := 0

	for _, paper := range papers {
		key := domain.NormalizeTitle(paper.Title)
		if utf8.RuneCountInString(key) < minDedupKeyLength {
			kept = append(kept, paper)
			continue
		}

		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, paper)
	}

	return kept, duplicates
}
