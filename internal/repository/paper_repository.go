package repository

import (
	"context"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// PaperRepository handles persistence of papers discovered during searches.
// Papers are keyed by (source, paper_id): the same external work may appear
// once per source that returned it.
type PaperRepository interface {
	// BulkUpsert inserts or updates papers in a single network roundtrip
	// and returns the number of rows written. Re-discovered papers keep
	// their richest known record: citation counts only grow, and missing
	// fields never overwrite present ones.
	BulkUpsert(ctx context.Context, papers []*domain.Paper) (int64, error)

	// Get retrieves a paper by source and source-assigned identifier.
	// Returns domain.ErrNotFound if no matching paper exists.
	Get(ctx context.Context, source domain.SourceType, paperID string) (*domain.Paper, error)

	// CountBySource returns the number of stored papers per source.
	CountBySource(ctx context.Context) (map[domain.SourceType]int64, error)
}
