package papersources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openscholar/paper-search-service/internal/domain"
)

// mockSource is a configurable PaperSource for registry tests.
type mockSource struct {
	sourceType domain.SourceType
	name       string
	enabled    bool
	papers     []*domain.Paper
	err        error
	delay      time.Duration
}

func (m *mockSource) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &SearchResult{
		Papers:       m.papers,
		TotalResults: len(m.papers),
		Source:       m.sourceType,
	}, nil
}

func (m *mockSource) SourceType() domain.SourceType { return m.sourceType }
func (m *mockSource) Name() string                  { return m.name }
func (m *mockSource) IsEnabled() bool               { return m.enabled }

func newMockSource(st domain.SourceType, enabled bool) *mockSource {
	return &mockSource{
		sourceType: st,
		name:       string(st),
		enabled:    enabled,
		papers: []*domain.Paper{
			{ID: string(st) + "-1", Source: st, Title: "Paper from " + string(st)},
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	source := newMockSource(domain.SourceTypeArXiv, true)

	registry.Register(source)

	got := registry.Get(domain.SourceTypeArXiv)
	require.NotNil(t, got)
	assert.Equal(t, domain.SourceTypeArXiv, got.SourceType())

	assert.Nil(t, registry.Get(domain.SourceTypePubMed))
}

func TestRegistryRegisterReplaces(t *testing.T) {
	registry := NewRegistry()
	first := newMockSource(domain.SourceTypeArXiv, true)
	second := newMockSource(domain.SourceTypeArXiv, false)

	registry.Register(first)
	registry.Register(second)

	got := registry.Get(domain.SourceTypeArXiv)
	require.NotNil(t, got)
	assert.False(t, got.IsEnabled())
}

func TestEnabledSourcesCanonicalOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockSource(domain.SourceTypeCORE, true))
	registry.Register(newMockSource(domain.SourceTypeArXiv, true))
	registry.Register(newMockSource(domain.SourceTypePubMed, false))
	registry.Register(newMockSource(domain.SourceTypeSemanticScholar, true))

	sources := registry.EnabledSources()
	require.Len(t, sources, 3)
	assert.Equal(t, domain.SourceTypeArXiv, sources[0].SourceType())
	assert.Equal(t, domain.SourceTypeSemanticScholar, sources[1].SourceType())
	assert.Equal(t, domain.SourceTypeCORE, sources[2].SourceType())
}

func TestSearchSourcesAll(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockSource(domain.SourceTypeArXiv, true))
	registry.Register(newMockSource(domain.SourceTypeSemanticScholar, true))
	registry.Register(newMockSource(domain.SourceTypePubMed, false))

	results := registry.SearchSources(context.Background(), SearchParams{Query: "q"}, nil, 0)
	require.Len(t, results, 2, "disabled sources are not dispatched")

	seen := map[domain.SourceType]bool{}
	for _, r := range results {
		require.NoError(t, r.Error)
		require.NotNil(t, r.Result)
		seen[r.Source] = true
	}
	assert.True(t, seen[domain.SourceTypeArXiv])
	assert.True(t, seen[domain.SourceTypeSemanticScholar])
}

func TestSearchSourcesSubset(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockSource(domain.SourceTypeArXiv, true))
	registry.Register(newMockSource(domain.SourceTypeCrossRef, true))

	results := registry.SearchSources(
		context.Background(),
		SearchParams{Query: "q"},
		[]domain.SourceType{domain.SourceTypeCrossRef, domain.SourceTypePubMed},
		0,
	)

	require.Len(t, results, 1, "unknown requested types are skipped")
	assert.Equal(t, domain.SourceTypeCrossRef, results[0].Source)
}

func TestSearchSourcesSettlesFailures(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockSource(domain.SourceTypeArXiv, true))

	failing := newMockSource(domain.SourceTypePubMed, true)
	failing.err = errors.New("upstream down")
	registry.Register(failing)

	results := registry.SearchSources(context.Background(), SearchParams{Query: "q"}, nil, 0)
	require.Len(t, results, 2, "a failing source never drops a sibling result")

	var okCount, errCount int
	for _, r := range results {
		if r.Error != nil {
			errCount++
			assert.Equal(t, domain.SourceTypePubMed, r.Source)
			assert.Nil(t, r.Result)
		} else {
			okCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, errCount)
}

func TestSearchSourcesPerCallTimeout(t *testing.T) {
	registry := NewRegistry()

	slow := newMockSource(domain.SourceTypeArXiv, true)
	slow.delay = 500 * time.Millisecond
	registry.Register(slow)

	fast := newMockSource(domain.SourceTypeSemanticScholar, true)
	registry.Register(fast)

	start := time.Now()
	results := registry.SearchSources(context.Background(), SearchParams{Query: "q"}, nil, 50*time.Millisecond)
	elapsed := time.Since(start)

	require.Len(t, results, 2)
	assert.Less(t, elapsed, 400*time.Millisecond, "slow source is cut off by the per-call timeout")

	for _, r := range results {
		if r.Source == domain.SourceTypeArXiv {
			require.Error(t, r.Error)
			assert.ErrorIs(t, r.Error, context.DeadlineExceeded)
		} else {
			require.NoError(t, r.Error)
		}
	}
}

func TestSearchSourcesEmptyRegistry(t *testing.T) {
	registry := NewRegistry()
	results := registry.SearchSources(context.Background(), SearchParams{Query: "q"}, nil, 0)
	assert.Nil(t, results)
}
