package search

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/events"
	"github.com/openscholar/paper-search-service/internal/observability"
	"github.com/openscholar/paper-search-service/internal/papersources"
)

// Default values for the aggregation pipeline.
const (
	// DefaultLimit is the result limit when the caller does not set one.
	DefaultLimit = 20

	// MaxLimit caps the result limit a caller may request.
	MaxLimit = 100

	// DefaultPerSourceTimeout bounds each individual source call.
	DefaultPerSourceTimeout = 10 * time.Second

	// DefaultSideEffectTimeout bounds the post-response persistence and
	// event publishing.
	DefaultSideEffectTimeout = 15 * time.Second
)

// QueryEnhancer rewrites a query for better recall. Implementations never
// fail; at worst they return the query unchanged.
type QueryEnhancer interface {
	Enhance(ctx context.Context, query string) string
}

// PaperStore persists papers. The pipeline treats it as fire-and-forget.
type PaperStore interface {
	BulkUpsert(ctx context.Context, papers []*domain.Paper) (int64, error)
}

// Request describes one aggregate search.
type Request struct {
	// Query is the caller's search query.
	Query string

	// Sources restricts the search to these sources. Empty means all
	// enabled sources.
	Sources []domain.SourceType

	// Filters narrow the candidate set after collection.
	Filters Filters

	// Limit caps the number of returned papers. Zero means DefaultLimit.
	Limit int
}

// Result is the outcome of one aggregate search.
type Result struct {
	// Papers is the deduplicated, filtered, ranked result set.
	Papers []*domain.Paper

	// Clusters groups the result set by shared title tokens.
	Clusters []domain.Cluster

	// EnhancedQuery is the query actually sent to the sources.
	EnhancedQuery string

	// SourcesUsed names the sources that were dispatched.
	SourcesUsed []string

	// Total is the number of papers returned.
	Total int
}

// Config holds pipeline tuning knobs.
type Config struct {
	// DefaultLimit is used when a request carries no limit.
	DefaultLimit int

	// PerSourceTimeout bounds each individual source call.
	PerSourceTimeout time.Duration

	// SideEffectTimeout bounds persistence and event publishing after the
	// response is computed.
	SideEffectTimeout time.Duration
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.DefaultLimit == 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.PerSourceTimeout == 0 {
		c.PerSourceTimeout = DefaultPerSourceTimeout
	}
	if c.SideEffectTimeout == 0 {
		c.SideEffectTimeout = DefaultSideEffectTimeout
	}
}

// Service runs the aggregation pipeline: enhance, fan out, settle, normalize,
// deduplicate, filter, rank, truncate, cluster, persist.
type Service struct {
	registry  *papersources.Registry
	enhancer  QueryEnhancer
	store     PaperStore
	publisher events.Publisher
	logger    zerolog.Logger
	metrics   *observability.Metrics
	config    Config

	// sideEffects tracks in-flight fire-and-forget work so shutdown can
	// drain it.
	sideEffects sync.WaitGroup
}

// NewService creates the aggregation service. enhancer, store, and publisher
// may be nil; the corresponding step is skipped.
func NewService(
	registry *papersources.Registry,
	enhancer QueryEnhancer,
	store PaperStore,
	publisher events.Publisher,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	cfg Config,
) *Service {
	cfg.applyDefaults()
	return &Service{
		registry:  registry,
		enhancer:  enhancer,
		store:     store,
		publisher: publisher,
		logger:    logger.With().Str("component", "search").Logger(),
		metrics:   metrics,
		config:    cfg,
	}
}

// Search runs one aggregate search. Source failures degrade the result set;
// they never fail the call. The returned papers are deduplicated by
// normalized title, match the request filters, are ordered by citation count
// descending (stable for ties), and number at most the request limit.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	// Prefer the request ID the HTTP layer put in the context; direct
	// callers get a generated one.
	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := observability.WithSearchContext(s.logger, requestID, req.Query)

	if s.metrics != nil {
		s.metrics.RecordSearchStarted()
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// Step 1: enhance once; the enhanced text is used for every source call.
	query := req.Query
	if s.enhancer != nil {
		query = s.enhancer.Enhance(ctx, req.Query)
	}

	// Resolve which sources will be dispatched so the per-source budget and
	// the sources_used response field agree with reality.
	sources := s.resolveSources(req.Sources)
	if len(sources) == 0 {
		logger.Warn().Msg("no enabled sources to search")
		return &Result{
			Papers:        []*domain.Paper{},
			Clusters:      []domain.Cluster{},
			EnhancedQuery: query,
			SourcesUsed:   []string{},
		}, nil
	}

	// Step 2: each source is asked for ceil(limit/|sources|) results so
	// aggregate supply roughly meets demand without over-fetching any one
	// upstream.
	perSourceLimit := int(math.Ceil(float64(limit) / float64(len(sources))))
	if perSourceLimit < 1 {
		perSourceLimit = 1
	}

	params := papersources.SearchParams{
		Query:        query,
		MaxResults:   perSourceLimit,
		MinCitations: req.Filters.MinCitations,
	}

	// Steps 2-3: concurrent fan-out, settle all.
	outcomes := s.registry.SearchSources(ctx, params, sources, s.config.PerSourceTimeout)

	// Step 4: concatenate. Failed sources contribute nothing.
	sourcesUsed := make([]string, 0, len(sources))
	perSourceCounts := make(map[string]int, len(sources))
	candidates := make([]*domain.Paper, 0, len(outcomes)*perSourceLimit)

	for _, outcome := range outcomes {
		name := string(outcome.Source)
		sourcesUsed = append(sourcesUsed, name)

		if outcome.Error != nil {
			logger.Warn().
				Err(outcome.Error).
				Str("source", name).
				Msg("source search failed")
			if s.metrics != nil {
				s.metrics.RecordSourceSearch(name, 0, 0, outcome.Error)
			}
			perSourceCounts[name] = 0
			continue
		}

		perSourceCounts[name] = len(outcome.Result.Papers)
		if s.metrics != nil {
			s.metrics.RecordSourceSearch(name, outcome.Result.SearchDuration, len(outcome.Result.Papers), nil)
		}
		candidates = append(candidates, outcome.Result.Papers...)
	}
	sort.Strings(sourcesUsed)

	// Step 5: deduplicate by normalized title, first occurrence wins.
	deduped, duplicates := Deduplicate(candidates)
	if s.metrics != nil {
		s.metrics.RecordDeduplication(len(candidates), duplicates)
	}

	// Step 6: post-hoc filters.
	filtered := req.Filters.Apply(deduped)

	// Step 7: rank by citations descending, stable for ties.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CitationCount > filtered[j].CitationCount
	})

	// Step 8: truncate.
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	// Step 9: cluster the final set.
	clusters := ClusterPapers(filtered)

	result := &Result{
		Papers:        filtered,
		Clusters:      clusters,
		EnhancedQuery: query,
		SourcesUsed:   sourcesUsed,
		Total:         len(filtered),
	}

	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordSearchCompleted(duration, len(filtered))
	}
	logger.Info().
		Int("candidates", len(candidates)).
		Int("duplicates", duplicates).
		Int("returned", len(filtered)).
		Dur("duration", duration).
		Msg("search completed")

	// Step 10: fire-and-forget persistence and event publishing. The
	// response does not wait for, and is never affected by, either.
	s.dispatchSideEffects(ctx, requestID, req.Query, result, perSourceCounts, duration)

	return result, nil
}

// Drain blocks until all in-flight side effects have finished. Called during
// graceful shutdown so pending persistence is not lost.
func (s *Service) Drain() {
	s.sideEffects.Wait()
}

// resolveSources maps the requested source types to the dispatchable set:
// enabled requested sources, or all enabled sources when none are requested.
func (s *Service) resolveSources(requested []domain.SourceType) []domain.SourceType {
	var enabled []papersources.PaperSource
	if len(requested) == 0 {
		enabled = s.registry.EnabledSources()
	} else {
		for _, st := range requested {
			if src := s.registry.Get(st); src != nil && src.IsEnabled() {
				enabled = append(enabled, src)
			}
		}
		// An empty remaining set falls back to all enabled sources.
		if len(enabled) == 0 {
			enabled = s.registry.EnabledSources()
		}
	}

	types := make([]domain.SourceType, 0, len(enabled))
	for _, src := range enabled {
		types = append(types, src.SourceType())
	}
	return types
}

// dispatchSideEffects persists the result set and publishes the completion
// event in the background. The work survives cancellation of the request
// context but is bounded by its own timeout.
func (s *Service) dispatchSideEffects(
	ctx context.Context,
	requestID, originalQuery string,
	result *Result,
	perSourceCounts map[string]int,
	duration time.Duration,
) {
	if s.store == nil && s.publisher == nil {
		return
	}

	papers := result.Papers
	logger := observability.WithSearchContext(s.logger, requestID, originalQuery)

	s.sideEffects.Add(1)
	go func() {
		defer s.sideEffects.Done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SideEffectTimeout)
		defer cancel()

		if s.store != nil && len(papers) > 0 {
			if n, err := s.store.BulkUpsert(bgCtx, papers); err != nil {
				logger.Warn().Err(err).Msg("paper store upsert failed")
				if s.metrics != nil {
					s.metrics.RecordStoreFailure()
				}
			} else if s.metrics != nil {
				s.metrics.RecordStoreUpserts(int(n))
			}
		}

		if s.publisher != nil {
			event := events.SearchCompleted{
				RequestID:       requestID,
				Query:           originalQuery,
				EnhancedQuery:   result.EnhancedQuery,
				SourcesUsed:     result.SourcesUsed,
				PerSourceCounts: perSourceCounts,
				Total:           result.Total,
				DurationMS:      duration.Milliseconds(),
				OccurredAt:      time.Now().UTC(),
			}
			err := s.publisher.PublishSearchCompleted(bgCtx, event)
			if err != nil {
				logger.Warn().Err(err).Msg("search.completed publish failed")
			}
			if s.metrics != nil {
				s.metrics.RecordEventPublished(events.TopicSearchCompleted, err)
			}
		}
	}()
}
