package semanticscholar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/papersources"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string) *Client {
	cfg := Config{
		BaseURL:    serverURL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RateLimit:  100,
		BurstSize:  100,
		MaxResults: 25,
		Enabled:    true,
	}

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		APIKey:       cfg.APIKey,
		APIKeyHeader: "x-api-key",
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// sampleSearchResponse returns a sample Graph API search response for testing.
func sampleSearchResponse() SearchResponse {
	return SearchResponse{
		Total: 2,
		Data: []PaperResult{
			{
				PaperID:       "649def34f8be52c8b66281af98ae884c09aef38b",
				Title:         "Attention Is All You Need",
				Abstract:      "The dominant sequence transduction models...",
				Year:          2017,
				CitationCount: 95000,
				URL:           "https://www.semanticscholar.org/paper/649def34",
				Authors: []Author{
					{AuthorID: "1", Name: "Ashish Vaswani"},
					{AuthorID: "2", Name: "Noam Shazeer"},
				},
				Journal:     &Journal{Name: "NeurIPS"},
				ExternalIDs: &ExternalIDs{DOI: "10.5555/3295222.3295349", ArXiv: "1706.03762"},
				OpenAccessPDF: &OpenAccessPDF{
					URL:    "https://arxiv.org/pdf/1706.03762.pdf",
					Status: "GREEN",
				},
			},
			{
				PaperID: "abc123",
				Title:   "",
				Year:    0,
			},
		},
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paper/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "transformers", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Contains(t, r.URL.Query().Get("fields"), "citationCount")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sampleSearchResponse())
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Search(context.Background(), papersources.SearchParams{
		Query:      "transformers",
		MaxResults: 5,
	})
	require.NoError(t, err)
	require.Len(t, result.Papers, 2)
	assert.Equal(t, 2, result.TotalResults)
	assert.Equal(t, domain.SourceTypeSemanticScholar, result.Source)

	first := result.Papers[0]
	assert.Equal(t, "649def34f8be52c8b66281af98ae884c09aef38b", first.ID)
	assert.Equal(t, "Attention Is All You Need", first.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, first.Authors)
	assert.Equal(t, 2017, first.Year)
	assert.Equal(t, 95000, first.CitationCount)
	assert.Equal(t, "NeurIPS", first.Journal)
	assert.Equal(t, "10.5555/3295222.3295349", first.DOI)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762.pdf", first.PDFURL)

	second := result.Papers[1]
	assert.Equal(t, domain.UntitledFallback, second.Title)
	assert.Equal(t, time.Now().Year(), second.Year)
	assert.Equal(t, 0, second.CitationCount)
}

func TestSearchMinCitationsForwarded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("minCitationCount"))
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), papersources.SearchParams{
		Query:        "x",
		MinCitations: 50,
	})
	require.NoError(t, err)
}

func TestSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "forbidden"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), papersources.SearchParams{Query: "x"})
	require.Error(t, err)

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "forbidden", apiErr.Message)
}

func TestSourceMetadata(t *testing.T) {
	client := New(Config{Enabled: true})
	assert.Equal(t, domain.SourceTypeSemanticScholar, client.SourceType())
	assert.Equal(t, "Semantic Scholar", client.Name())
	assert.True(t, client.IsEnabled())
}
