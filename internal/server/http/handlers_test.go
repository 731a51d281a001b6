package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/observability"
	"github.com/openscholar/paper-search-service/internal/papersources"
	"github.com/openscholar/paper-search-service/internal/search"
	"github.com/openscholar/paper-search-service/internal/summarizer"
)

// stubSearcher lets each test control the pipeline outcome.
type stubSearcher struct {
	lastRequest   search.Request
	lastRequestID string
	result        *search.Result
	err           error
	panicMsg      string
}

func (s *stubSearcher) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	s.lastRequest = req
	s.lastRequestID = observability.RequestIDFromContext(ctx)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result, s.err
}

// stubSummarizer returns a fixed summary.
type stubSummarizer struct {
	lastTitle    string
	lastAbstract string
	summary      summarizer.Summary
}

func (s *stubSummarizer) Summarize(ctx context.Context, title, abstract string) summarizer.Summary {
	s.lastTitle = title
	s.lastAbstract = abstract
	return s.summary
}

// stubSource is a minimal registry entry.
type stubSource struct {
	sourceType domain.SourceType
	name       string
	enabled    bool
}

func (s *stubSource) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	return &papersources.SearchResult{Source: s.sourceType}, nil
}
func (s *stubSource) SourceType() domain.SourceType { return s.sourceType }
func (s *stubSource) Name() string                  { return s.name }
func (s *stubSource) IsEnabled() bool               { return s.enabled }

func newTestServer(t *testing.T, searcher Searcher, sum Summarizer) *Server {
	t.Helper()

	registry := papersources.NewRegistry()
	registry.Register(&stubSource{sourceType: domain.SourceTypeArXiv, name: "arXiv", enabled: true})
	registry.Register(&stubSource{sourceType: domain.SourceTypePubMed, name: "PubMed", enabled: true})
	registry.Register(&stubSource{sourceType: domain.SourceTypeCORE, name: "CORE", enabled: false})

	if searcher == nil {
		searcher = &stubSearcher{result: emptyResult()}
	}
	if sum == nil {
		sum = &stubSummarizer{summary: summarizer.Summary{Text: "summary", Mode: summarizer.ModeExtractive}}
	}

	return NewServer(Config{Address: "127.0.0.1:0"}, searcher, sum, registry, nil, zerolog.Nop())
}

func emptyResult() *search.Result {
	return &search.Result{
		Papers:      []*domain.Paper{},
		Clusters:    []domain.Cluster{},
		SourcesUsed: []string{},
	}
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestSearchHandler(t *testing.T) {
	t.Run("returns the aggregated result", func(t *testing.T) {
		searcher := &stubSearcher{result: &search.Result{
			Papers: []*domain.Paper{
				{ID: "1706.03762", Source: domain.SourceTypeArXiv, Title: "Attention Is All You Need", CitationCount: 90000, Year: 2017},
			},
			Clusters:      []domain.Cluster{{Name: "Attention", Count: 1, PaperIDs: []string{"1706.03762"}}},
			EnhancedQuery: "transformer attention mechanisms",
			SourcesUsed:   []string{"arxiv", "pubmed"},
			Total:         1,
		}}
		s := newTestServer(t, searcher, nil)

		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{
			"query": "attention",
			"limit": 10,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

		var resp searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Papers, 1)
		assert.Equal(t, "Attention Is All You Need", resp.Papers[0].Title)
		assert.Equal(t, "transformer attention mechanisms", resp.EnhancedQuery)
		assert.Equal(t, []string{"arxiv", "pubmed"}, resp.SourcesUsed)
		require.Len(t, resp.Clusters, 1)
		assert.Equal(t, "Attention", resp.Clusters[0].Name)

		assert.Equal(t, "attention", searcher.lastRequest.Query)
		assert.Equal(t, 10, searcher.lastRequest.Limit)
		assert.NotEmpty(t, searcher.lastRequestID, "the middleware request ID reaches the pipeline context")
	})

	t.Run("missing query returns 400", func(t *testing.T) {
		s := newTestServer(t, nil, nil)

		for _, body := range []interface{}{
			nil,
			map[string]interface{}{},
			map[string]interface{}{"query": "   "},
		} {
			rec := doRequest(s, http.MethodPost, "/api/v1/search", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Query is required", resp.Error)
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit above the cap returns 400", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{
			"query": "attention",
			"limit": 500,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown source names are dropped", func(t *testing.T) {
		searcher := &stubSearcher{result: emptyResult()}
		s := newTestServer(t, searcher, nil)

		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{
			"query":   "attention",
			"sources": []string{"arxiv", "google_scholar", "pubmed"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []domain.SourceType{domain.SourceTypeArXiv, domain.SourceTypePubMed}, searcher.lastRequest.Sources)
	})

	t.Run("filters are forwarded", func(t *testing.T) {
		searcher := &stubSearcher{result: emptyResult()}
		s := newTestServer(t, searcher, nil)

		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{
			"query": "attention",
			"filters": map[string]interface{}{
				"author":       "Vaswani",
				"year":         "2017",
				"minCitations": 100,
				"domain":       "machine learning",
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, search.Filters{
			Author:       "Vaswani",
			Year:         2017,
			MinCitations: 100,
			Domain:       "machine learning",
		}, searcher.lastRequest.Filters)
	})

	t.Run("non-numeric year filter returns 400", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{
			"query":   "attention",
			"filters": map[string]interface{}{"year": "twenty seventeen"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pipeline error returns 500 with details", func(t *testing.T) {
		searcher := &stubSearcher{err: assert.AnError}
		s := newTestServer(t, searcher, nil)

		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "attention"})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "search failed", resp.Error)
		assert.NotEmpty(t, resp.Details)
	})

	t.Run("panic returns JSON 500", func(t *testing.T) {
		searcher := &stubSearcher{panicMsg: "boom"}
		s := newTestServer(t, searcher, nil)

		rec := doRequest(s, http.MethodPost, "/api/v1/search", map[string]interface{}{"query": "attention"})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "internal server error", resp.Error)
	})
}

func TestSummarizeHandler(t *testing.T) {
	t.Run("returns the summary", func(t *testing.T) {
		sum := &stubSummarizer{summary: summarizer.Summary{Text: "Transformers replace recurrence.", Mode: summarizer.ModeLLM}}
		s := newTestServer(t, nil, sum)

		rec := doRequest(s, http.MethodPost, "/api/v1/papers/summarize", map[string]interface{}{
			"title":    "Attention Is All You Need",
			"abstract": "We propose the Transformer.",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp summarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Transformers replace recurrence.", resp.Summary.Text)
		assert.Equal(t, summarizer.ModeLLM, resp.Summary.Mode)
		assert.Equal(t, "Attention Is All You Need", sum.lastTitle)
	})

	t.Run("blank title and abstract returns 400", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := doRequest(s, http.MethodPost, "/api/v1/papers/summarize", map[string]interface{}{
			"title":    "  ",
			"abstract": "",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Title or abstract is required", resp.Error)
	})
}

func TestSourcesHandler(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/v1/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listSourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Disabled sources are not listed; canonical order is preserved.
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "arxiv", resp.Sources[0].Type)
	assert.Equal(t, "arXiv", resp.Sources[0].Name)
	assert.True(t, resp.Sources[0].Enabled)
	assert.Equal(t, "pubmed", resp.Sources[1].Type)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a database the service is ready as soon as it is up.
	rec = doRequest(s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}
