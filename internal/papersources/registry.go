package papersources

import (
	"context"
	"sync"
	"time"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// SourceResult holds the outcome of a search against one source: either a
// result or an error, never both. The aggregation layer maps outcomes,
// discarding failures into the log, so one bad source never fails the batch.
type SourceResult struct {
	// Source identifies which paper source produced the outcome.
	Source domain.SourceType

	// Result contains the search results if the search succeeded.
	Result *SearchResult

	// Error contains the error if the search failed.
	Error error
}

// Registry manages paper sources and coordinates concurrent searches.
// It provides thread-safe registration and retrieval of paper sources,
// as well as concurrent search operations across multiple sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[domain.SourceType]PaperSource
}

// NewRegistry creates a new source registry with an empty source map.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[domain.SourceType]PaperSource),
	}
}

// Register adds a source to the registry.
// If a source with the same type already exists, it will be replaced.
// This method is thread-safe.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.SourceType()] = source
}

// Get returns a source by type, or nil if not found.
// This method is thread-safe.
func (r *Registry) Get(sourceType domain.SourceType) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[sourceType]
}

// EnabledSources returns only enabled sources, in the canonical source order.
// The returned slice is a snapshot and is safe to iterate even if
// sources are added or removed concurrently.
// This method is thread-safe.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, st := range domain.AllSourceTypes() {
		if source, ok := r.sources[st]; ok && source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	return sources
}

// SearchSources searches the requested sources concurrently and settles all
// calls: every dispatched source contributes exactly one SourceResult, success
// or failure, and no failure cancels a sibling call.
//
// If sourceTypes is nil or empty, all enabled sources are searched. Requested
// types missing from the registry or disabled are skipped. perCallTimeout
// bounds each individual source call when positive; without it a stalled
// upstream would stall the whole aggregate search.
// This method is thread-safe.
func (r *Registry) SearchSources(ctx context.Context, params SearchParams, sourceTypes []domain.SourceType, perCallTimeout time.Duration) []SourceResult {
	var sources []PaperSource

	if len(sourceTypes) == 0 {
		sources = r.EnabledSources()
	} else {
		r.mu.RLock()
		sources = make([]PaperSource, 0, len(sourceTypes))
		for _, st := range sourceTypes {
			if source, ok := r.sources[st]; ok && source.IsEnabled() {
				sources = append(sources, source)
			}
		}
		r.mu.RUnlock()
	}

	if len(sources) == 0 {
		return nil
	}

	resultChan := make(chan SourceResult, len(sources))
	var wg sync.WaitGroup

	for _, source := range sources {
		wg.Add(1)
		go func(s PaperSource) {
			defer wg.Done()

			callCtx := ctx
			if perCallTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, perCallTimeout)
				defer cancel()
			}

			result, err := s.Search(callCtx, params)
			resultChan <- SourceResult{
				Source: s.SourceType(),
				Result: result,
				Error:  err,
			}
		}(source)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]SourceResult, 0, len(sources))
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}
