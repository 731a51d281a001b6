// Package search implements the multi-source aggregation pipeline: query
// enhancement, concurrent fan-out to the configured paper sources, merge with
// per-source failure isolation, title deduplication, post-hoc filtering,
// citation ranking, truncation, and keyword clustering.
package search
