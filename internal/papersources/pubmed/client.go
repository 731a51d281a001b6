package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/papersources"
)

const (
	// DefaultBaseURL is the base URL for NCBI E-utilities API.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit is the rate limit without an API key (3 requests/second).
	// With an API key, the limit increases to 10 requests/second.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per search.
	DefaultMaxResults = 25

	// articleBaseURL is the public article page prefix for PMIDs.
	articleBaseURL = "https://pubmed.ncbi.nlm.nih.gov/"

	// sourceName is the human-readable name for this source.
	sourceName = "PubMed"
)

// Config holds the configuration for the PubMed client.
type Config struct {
	// BaseURL is the base URL for the E-utilities API.
	BaseURL string

	// APIKey is the NCBI API key for higher rate limits.
	// Optional but recommended for production use.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the default maximum results per search.
	MaxResults int

	// Enabled indicates whether this source is enabled.
	Enabled bool
}

// applyDefaults applies default values to the config.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements the papersources.PaperSource interface for PubMed.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Compile-time check that Client implements PaperSource.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new PubMed client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		}),
	}
}

// NewWithHTTPClient creates a new PubMed client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries PubMed for papers matching the given parameters.
// It performs a two-step search:
//  1. esearch.fcgi - retrieves PMIDs matching the query
//  2. esummary.fcgi - retrieves document summaries for the PMIDs
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchResult, err := c.esearch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("esearch failed: %w", err)
	}

	// Phrase-not-found is an empty result, not an error.
	if searchResult.ErrorList != nil && len(searchResult.ErrorList.PhraseNotFound) > 0 {
		return &papersources.SearchResult{
			Papers:         []*domain.Paper{},
			Source:         domain.SourceTypePubMed,
			SearchDuration: time.Since(startTime),
		}, nil
	}

	if len(searchResult.IDList.IDs) == 0 {
		return &papersources.SearchResult{
			Papers:         []*domain.Paper{},
			TotalResults:   searchResult.Count,
			Source:         domain.SourceTypePubMed,
			SearchDuration: time.Since(startTime),
		}, nil
	}

	summaries, err := c.esummary(ctx, searchResult.IDList.IDs)
	if err != nil {
		return nil, fmt.Errorf("esummary failed: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(summaries.DocSums))
	for i := range summaries.DocSums {
		papers = append(papers, c.docSumToPaper(&summaries.DocSums[i]))
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   searchResult.Count,
		Source:         domain.SourceTypePubMed,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypePubMed
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// esearch resolves the query to a list of PMIDs, bounded by MaxResults.
func (c *Client) esearch(ctx context.Context, params papersources.SearchParams) (*ESearchResult, error) {
	maxResults := params.MaxResults
	if maxResults <= 0 || maxResults > c.config.MaxResults {
		maxResults = c.config.MaxResults
	}

	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("term", params.Query)
	q.Set("retmax", strconv.Itoa(maxResults))
	q.Set("retmode", "xml")
	if c.config.APIKey != "" {
		q.Set("api_key", c.config.APIKey)
	}

	var result ESearchResult
	if err := c.getXML(ctx, "/esearch.fcgi", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// esummary fetches document summaries for the joined PMID list.
func (c *Client) esummary(ctx context.Context, pmids []string) (*ESummaryResult, error) {
	q := url.Values{}
	q.Set("db", "pubmed")
	q.Set("id", strings.Join(pmids, ","))
	q.Set("retmode", "xml")
	if c.config.APIKey != "" {
		q.Set("api_key", c.config.APIKey)
	}

	var result ESummaryResult
	if err := c.getXML(ctx, "/esummary.fcgi", q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// getXML performs a GET against an E-utilities endpoint and decodes the XML body.
func (c *Client) getXML(ctx context.Context, endpoint string, q url.Values, out interface{}) error {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + endpoint
	baseURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// docSumToPaper converts an esummary document summary to a domain Paper.
// Summaries carry no abstract; citation counts are unavailable from this
// endpoint and stay at zero.
func (c *Client) docSumToPaper(doc *DocSum) *domain.Paper {
	paper := &domain.Paper{
		ID:     doc.ID,
		Source: domain.SourceTypePubMed,
		URL:    articleBaseURL + doc.ID + "/",
	}

	for _, item := range doc.Items {
		switch item.Name {
		case "Title":
			paper.Title = item.Value
		case "PubDate", "EPubDate":
			if paper.Year == 0 {
				paper.Year = parseYear(item.Value)
			}
		case "FullJournalName":
			paper.Journal = item.Value
		case "Source":
			if paper.Journal == "" {
				paper.Journal = item.Value
			}
		case "AuthorList":
			for _, author := range item.Items {
				if author.Name == "Author" && author.Value != "" {
					paper.Authors = append(paper.Authors, author.Value)
				}
			}
		case "DOI":
			paper.DOI = item.Value
		case "ArticleIds":
			for _, id := range item.Items {
				if id.Name == "doi" && paper.DOI == "" {
					paper.DOI = id.Value
				}
			}
		}
	}

	paper.Normalize()
	return paper
}

// parseYear extracts the leading year from a PubMed date string such as
// "2021 Mar 15" or "2021".
func parseYear(date string) int {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return year
}
