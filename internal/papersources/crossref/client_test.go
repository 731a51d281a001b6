package crossref

import (
	"context"
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
		Timeout:    5 * time.Second,
		RateLimit:  100,
		BurstSize:  100,
		MaxResults: 25,
		Enabled:    true,
	}

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	})

	return NewWithHTTPClient(cfg, httpClient)
}

const sampleWorks = `{
  "status": "ok",
  "message-type": "work-list",
  "message": {
    "total-results": 4821,
    "items": [
      {
        "DOI": "10.1038/nature14539",
        "title": ["Deep learning"],
        "author": [
          {"given": "Yann", "family": "LeCun"},
          {"given": "Yoshua", "family": "Bengio"},
          {"given": "Geoffrey", "family": "Hinton"}
        ],
        "container-title": ["Nature"],
        "is-referenced-by-count": 45102,
        "URL": "http://dx.doi.org/10.1038/nature14539",
        "published": {"date-parts": [[2015, 5, 27]]},
        "link": [
          {"URL": "https://example.org/nature14539.pdf", "content-type": "application/pdf"}
        ]
      },
      {
        "DOI": "10.5555/no-url",
        "title": [],
        "author": [{"name": "OpenAI"}],
        "is-referenced-by-count": 12,
        "abstract": "<jats:p>A short   abstract.</jats:p>"
      }
    ]
  }
}`

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		assert.Equal(t, "machine learning", r.URL.Query().Get("query"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "10", r.URL.Query().Get("rows"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleWorks))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Search(context.Background(), papersources.SearchParams{
		Query:      "machine learning",
		MaxResults: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 4821, result.TotalResults)
	assert.Equal(t, domain.SourceTypeCrossRef, result.Source)
	require.Len(t, result.Papers, 2)

	first := result.Papers[0]
	assert.Equal(t, "10.1038/nature14539", first.ID)
	assert.Equal(t, "10.1038/nature14539", first.DOI)
	assert.Equal(t, "Deep learning", first.Title)
	assert.Equal(t, []string{"Yann LeCun", "Yoshua Bengio", "Geoffrey Hinton"}, first.Authors)
	assert.Equal(t, "Nature", first.Journal)
	assert.Equal(t, 45102, first.CitationCount)
	assert.Equal(t, 2015, first.Year)
	assert.Equal(t, "http://dx.doi.org/10.1038/nature14539", first.URL)
	assert.Equal(t, "https://example.org/nature14539.pdf", first.PDFURL)

	second := result.Papers[1]
	assert.Equal(t, domain.UntitledFallback, second.Title, "missing title falls back")
	assert.Equal(t, "https://doi.org/10.5555/no-url", second.URL, "URL falls back to the DOI resolver")
	assert.Equal(t, []string{"OpenAI"}, second.Authors, "organization authors use the name field")
	assert.Equal(t, "A short abstract.", second.Abstract, "JATS markup is stripped")
	assert.Equal(t, time.Now().Year(), second.Year)
}

func TestSearchMailto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dev@example.org", r.URL.Query().Get("mailto"))
		_, _ = w.Write([]byte(`{"status":"ok","message":{"total-results":0,"items":[]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.config.Mailto = "dev@example.org"

	result, err := client.Search(context.Background(), papersources.SearchParams{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, result.Papers)
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), papersources.SearchParams{Query: "x"})
	require.Error(t, err)

	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSearchMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "message": {`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), papersources.SearchParams{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestWorkWithoutDOISkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","message":{"total-results":1,"items":[{"title":["No DOI here"]}]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Search(context.Background(), papersources.SearchParams{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, result.Papers)
}

func TestClientMetadata(t *testing.T) {
	client := New(Config{Enabled: true})
	assert.Equal(t, domain.SourceTypeCrossRef, client.SourceType())
	assert.Equal(t, "CrossRef", client.Name())
	assert.True(t, client.IsEnabled())
}
