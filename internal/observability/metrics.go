package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper search service.
// Metrics are organized by subsystem: searches, sources, papers, enhancement,
// summaries, storage, and events. All counters and histograms are registered
// via promauto for automatic registration with the default Prometheus registry.
type Metrics struct {
	// SearchesStarted counts aggregate search requests received.
	SearchesStarted prometheus.Counter

	// SearchesCompleted counts aggregate searches that finished successfully.
	SearchesCompleted prometheus.Counter

	// SearchesFailed counts aggregate searches that ended in failure.
	SearchesFailed prometheus.Counter

	// SearchDuration observes the end-to-end search duration in seconds.
	SearchDuration prometheus.Histogram

	// PapersReturned observes the number of papers returned per search response.
	PapersReturned prometheus.Histogram

	// SourceSearches counts per-source searches dispatched, labeled by source.
	SourceSearches *prometheus.CounterVec

	// SourceSearchesFailed counts per-source searches that failed, labeled by source.
	SourceSearchesFailed *prometheus.CounterVec

	// SourceSearchDuration observes per-source search duration in seconds.
	SourceSearchDuration *prometheus.HistogramVec

	// PapersPerSource observes the number of papers each source returned.
	PapersPerSource *prometheus.HistogramVec

	// PapersDiscovered counts papers collected across all sources before dedup.
	PapersDiscovered prometheus.Counter

	// PapersDuplicate counts papers discarded by title deduplication.
	PapersDuplicate prometheus.Counter

	// EnhancementRequests counts query enhancement attempts.
	EnhancementRequests prometheus.Counter

	// EnhancementFailures counts enhancement attempts that fell back to the
	// original query.
	EnhancementFailures prometheus.Counter

	// SummariesGenerated counts paper summaries produced, labeled by mode
	// ("llm" or "extractive").
	SummariesGenerated *prometheus.CounterVec

	// StoreUpserts counts papers written to the paper store.
	StoreUpserts prometheus.Counter

	// StoreFailures counts failed paper store writes.
	StoreFailures prometheus.Counter

	// EventsPublished counts events published to the broker, labeled by topic.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts event publishes that failed, labeled by topic.
	EventsFailed *prometheus.CounterVec

	// LLMRequestsTotal counts LLM API requests, labeled by operation and model.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMTokensUsed counts tokens consumed by LLM operations, labeled by
	// operation, model, and token type.
	LLMTokensUsed *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of aggregate search requests started",
		}),
		SearchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of aggregate searches completed successfully",
		}),
		SearchesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of aggregate searches that failed",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end duration of aggregate searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		PapersReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_returned",
			Help:      "Number of papers returned per search response",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}),

		SourceSearches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_total",
			Help:      "Total number of per-source searches dispatched",
		}, []string{"source"}),
		SourceSearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_failed_total",
			Help:      "Total number of per-source searches that failed",
		}, []string{"source"}),
		SourceSearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_search_duration_seconds",
			Help:      "Duration of per-source searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"source"}),
		PapersPerSource: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_source",
			Help:      "Number of papers returned per source per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"source"}),

		PapersDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_discovered_total",
			Help:      "Total number of papers collected across sources before deduplication",
		}),
		PapersDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_duplicate_total",
			Help:      "Total number of papers discarded by title deduplication",
		}),

		EnhancementRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancement_requests_total",
			Help:      "Total number of query enhancement attempts",
		}),
		EnhancementFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancement_failures_total",
			Help:      "Total number of query enhancements that fell back to the original query",
		}),

		SummariesGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_generated_total",
			Help:      "Total number of paper summaries generated by mode",
		}, []string{"mode"}),

		StoreUpserts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_upserts_total",
			Help:      "Total number of papers upserted into the paper store",
		}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Total number of failed paper store writes",
		}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published to the broker",
		}, []string{"topic"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of event publishes that failed",
		}, []string{"topic"}),

		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM API requests",
		}, []string{"operation", "model"}),
		LLMTokensUsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of LLM tokens consumed",
		}, []string{"operation", "model", "token_type"}),
	}
}

// RecordSearchStarted increments the aggregate search counter.
func (m *Metrics) RecordSearchStarted() {
	m.SearchesStarted.Inc()
}

// RecordSearchCompleted records a successful aggregate search with its
// duration and the number of papers returned.
func (m *Metrics) RecordSearchCompleted(duration time.Duration, papers int) {
	m.SearchesCompleted.Inc()
	m.SearchDuration.Observe(duration.Seconds())
	m.PapersReturned.Observe(float64(papers))
}

// RecordSearchFailed increments the failed aggregate search counter.
func (m *Metrics) RecordSearchFailed() {
	m.SearchesFailed.Inc()
}

// RecordSourceSearch records a per-source search outcome.
func (m *Metrics) RecordSourceSearch(source string, duration time.Duration, papers int, err error) {
	m.SourceSearches.WithLabelValues(source).Inc()
	if err != nil {
		m.SourceSearchesFailed.WithLabelValues(source).Inc()
		return
	}
	m.SourceSearchDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.PapersPerSource.WithLabelValues(source).Observe(float64(papers))
}

// RecordDeduplication records the collected and discarded paper counts of one
// deduplication pass.
func (m *Metrics) RecordDeduplication(collected, duplicates int) {
	m.PapersDiscovered.Add(float64(collected))
	m.PapersDuplicate.Add(float64(duplicates))
}

// RecordEnhancement records a query enhancement attempt; fellBack indicates
// the original query was returned instead of a rewrite.
func (m *Metrics) RecordEnhancement(fellBack bool) {
	m.EnhancementRequests.Inc()
	if fellBack {
		m.EnhancementFailures.Inc()
	}
}

// RecordSummary records a generated summary by mode ("llm" or "extractive").
func (m *Metrics) RecordSummary(mode string) {
	m.SummariesGenerated.WithLabelValues(mode).Inc()
}

// RecordStoreUpserts records papers written to the paper store.
func (m *Metrics) RecordStoreUpserts(count int) {
	m.StoreUpserts.Add(float64(count))
}

// RecordStoreFailure increments the failed store write counter.
func (m *Metrics) RecordStoreFailure() {
	m.StoreFailures.Inc()
}

// RecordEventPublished records an event publish outcome for a topic.
func (m *Metrics) RecordEventPublished(topic string, err error) {
	if err != nil {
		m.EventsFailed.WithLabelValues(topic).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}

// RecordLLMUsage records an LLM request and its token usage.
func (m *Metrics) RecordLLMUsage(operation, model string, inputTokens, outputTokens int) {
	m.LLMRequestsTotal.WithLabelValues(operation, model).Inc()
	m.LLMTokensUsed.WithLabelValues(operation, model, "input").Add(float64(inputTokens))
	m.LLMTokensUsed.WithLabelValues(operation, model, "output").Add(float64(outputTokens))
}
