// Package observability provides logging and metrics support for the paper
// search service.
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("query", query).Msg("search started")
//
// # Metrics
//
// Initialize metrics once at startup:
//
//	metrics := observability.NewMetrics("paper_search")
//
// Record metrics:
//
//	metrics.RecordSearchStarted()
//	metrics.RecordSourceSearch("arxiv", duration, len(papers), err)
//	metrics.RecordDeduplication(collected, duplicates)
//
// # Standard Fields
//
// Common log fields used across the service:
//
//   - request_id: search request identifier
//   - query: user's search query
//   - source: paper source (arxiv, semantic_scholar, pubmed, crossref, core)
//   - paper_id: source-scoped paper identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
