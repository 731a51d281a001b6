// Package domain provides the core models for the paper search service.
package domain

import (
	"strings"
	"time"
	"unicode"
)

// SourceType identifies the external academic database that produced a paper.
// These values appear verbatim in API requests, responses, and the papers table.
type SourceType string

const (
	SourceTypeArXiv           SourceType = "arxiv"
	SourceTypeSemanticScholar SourceType = "semantic_scholar"
	SourceTypePubMed          SourceType = "pubmed"
	SourceTypeCrossRef        SourceType = "crossref"
	SourceTypeCORE            SourceType = "core"
)

// AllSourceTypes lists every supported source in canonical order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeArXiv,
		SourceTypeSemanticScholar,
		SourceTypePubMed,
		SourceTypeCrossRef,
		SourceTypeCORE,
	}
}

// ParseSourceType converts a caller-supplied source name to a SourceType.
// Returns false for names outside the supported enumeration.
func ParseSourceType(s string) (SourceType, bool) {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceTypeArXiv:
		return SourceTypeArXiv, true
	case SourceTypeSemanticScholar:
		return SourceTypeSemanticScholar, true
	case SourceTypePubMed:
		return SourceTypePubMed, true
	case SourceTypeCrossRef:
		return SourceTypeCrossRef, true
	case SourceTypeCORE:
		return SourceTypeCORE, true
	default:
		return "", false
	}
}

// IsValid reports whether s is one of the supported sources.
func (s SourceType) IsValid() bool {
	_, ok := ParseSourceType(string(s))
	return ok
}

// UntitledFallback is substituted when a provider returns a paper with no title.
// The title doubles as the deduplication key, so it must never be empty.
const UntitledFallback = "Untitled"

// Paper represents one search result from an external academic database.
// A paper is identified by (ID, Source); the same work discovered through two
// sources is two distinct records until title deduplication merges them.
type Paper struct {
	// ID is the provider-native identifier (arXiv id, S2 paperId, PMID, DOI, CORE id).
	ID string `json:"id"`

	// Source is the database that produced this record.
	Source SourceType `json:"source"`

	// Title is the paper title. Never empty after Normalize.
	Title string `json:"title"`

	// Authors holds display names in the provider's order. May be empty.
	Authors []string `json:"authors"`

	// Abstract is the paper abstract, empty when the provider omits it.
	Abstract string `json:"abstract,omitempty"`

	// Year is the publication year. Defaults to the current year when the
	// provider supplies no date.
	Year int `json:"year"`

	// CitationCount is the citation count, 0 when unknown.
	CitationCount int `json:"citation_count"`

	Journal string `json:"journal,omitempty"`
	DOI     string `json:"doi,omitempty"`
	URL     string `json:"url,omitempty"`
	PDFURL  string `json:"pdf_url,omitempty"`
}

// Normalize enforces the record invariants at the adapter boundary:
// non-empty title, non-negative citation count, and a publication year
// (current year when the provider gave none).
func (p *Paper) Normalize() {
	p.Title = CollapseWhitespace(p.Title)
	if p.Title == "" {
		p.Title = UntitledFallback
	}
	if p.CitationCount < 0 {
		p.CitationCount = 0
	}
	if p.Year == 0 {
		p.Year = time.Now().Year()
	}
}

// NormalizeTitle produces the deduplication key for a title: lowercase,
// punctuation stripped, whitespace collapsed and trimmed.
func NormalizeTitle(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return CollapseWhitespace(sb.String())
}

// CollapseWhitespace trims and collapses runs of whitespace (including
// newlines) into single spaces. Providers such as arXiv wrap titles and
// abstracts across lines.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
