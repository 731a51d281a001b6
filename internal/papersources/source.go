// Package papersources provides interfaces and types for academic paper source clients.
//
// Each external database (arXiv, Semantic Scholar, PubMed, CrossRef, CORE)
// implements the PaperSource interface, allowing the aggregation pipeline to
// search multiple sources concurrently with a unified API.
//
// Example usage:
//
//	source := arxiv.New(arxiv.Config{Enabled: true})
//	params := papersources.SearchParams{
//		Query:      "transformer attention",
//		MaxResults: 10,
//	}
//	result, err := source.Search(ctx, params)
package papersources

import (
	"context"
	"time"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// SearchParams defines the parameters for searching academic papers.
type SearchParams struct {
	// Query is the search query string (required). The aggregation pipeline
	// passes the enhanced query here; adapters send it verbatim.
	Query string

	// MaxResults limits the number of papers returned in a single request.
	// A value of 0 uses the source's default limit.
	MaxResults int

	// MinCitations asks sources that support native citation filtering to
	// apply it upstream. Sources without native support ignore it; the
	// aggregator re-applies the filter to the merged set either way.
	MinCitations int
}

// SearchResult contains the results from a paper source search operation.
type SearchResult struct {
	// Papers contains the papers returned by the search, already normalized
	// (non-empty titles, non-negative citation counts).
	Papers []*domain.Paper

	// TotalResults is the total number of papers matching the query as
	// reported by the source, which may be an estimate.
	TotalResults int

	// Source identifies which paper source provided these results.
	Source domain.SourceType

	// SearchDuration is the time taken to execute the search,
	// including network latency and response parsing.
	SearchDuration time.Duration
}

// PaperSource defines the interface that all paper source clients must implement.
//
// Implementations should:
//   - Respect context cancellation
//   - Apply rate limiting as needed
//   - Transform source-specific responses to domain.Paper
//   - Include appropriate error wrapping with source context
//
// Implementations return errors to the caller; the aggregation layer owns
// failure isolation and converts a failed source into zero papers.
type PaperSource interface {
	// Search queries the paper source for papers matching the given parameters.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// SourceType returns the type identifier for this paper source.
	SourceType() domain.SourceType

	// Name returns a human-readable name for this paper source.
	// Used for logging, metrics, and display purposes.
	Name() string

	// IsEnabled returns whether this paper source is currently enabled and
	// available for searches. A source may be disabled by configuration or
	// a missing API key.
	IsEnabled() bool
}
