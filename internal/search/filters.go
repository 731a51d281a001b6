package search

import (
	"strings"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// Filters narrow the aggregated candidate set after collection. They are
// applied here rather than pushed into every adapter, so that adapters which
// cannot filter natively are still correctly constrained.
type Filters struct {
	// Author keeps papers with at least one author containing this substring
	// (case-insensitive).
	Author string

	// Year keeps papers published in exactly this year. Zero means no filter.
	Year int

	// MinCitations keeps papers with at least this many citations.
	MinCitations int

	// Domain keeps papers whose title, abstract, or journal contains this
	// substring (case-insensitive).
	Domain string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Author == "" && f.Year == 0 && f.MinCitations == 0 && f.Domain == ""
}

// Apply returns the papers matching all set filters, preserving order.
func (f Filters) Apply(papers []*domain.Paper) []*domain.Paper {
	if f.IsZero() {
		return papers
	}

	matched := make([]*domain.Paper, 0, len(papers))
	for _, paper := range papers {
		if f.matches(paper) {
			matched = append(matched, paper)
		}
	}
	return matched
}

// matches reports whether the paper passes every set filter.
func (f Filters) matches(paper *domain.Paper) bool {
	if f.Year != 0 && paper.Year != f.Year {
		return false
	}
	if paper.CitationCount < f.MinCitations {
		return false
	}
	if f.Author != "" && !matchesAuthor(paper.Authors, f.Author) {
		return false
	}
	if f.Domain != "" && !matchesDomain(paper, f.Domain) {
		return false
	}
	return true
}

// matchesAuthor reports whether any author name contains the substring,
// case-insensitively.
func matchesAuthor(authors []string, substr string) bool {
	needle := strings.ToLower(substr)
	for _, author := range authors {
		if strings.Contains(strings.ToLower(author), needle) {
			return true
		}
	}
	return false
}

// matchesDomain reports whether the paper's title, abstract, or journal
// contains the substring, case-insensitively.
func matchesDomain(paper *domain.Paper, substr string) bool {
	needle := strings.ToLower(substr)
	for _, field := range []string{paper.Title, paper.Abstract, paper.Journal} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
