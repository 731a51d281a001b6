package coreapi

import (
	"context"
	"encoding/json"
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
	// DefaultBaseURL is the default CORE v3 API base URL.
	DefaultBaseURL = "https://api.core.ac.uk/v3"

	// DefaultRateLimit is conservative; CORE enforces per-key quotas.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 25

	// workPageURL is the public work page prefix for CORE work IDs.
	workPageURL = "https://core.ac.uk/works/"

	// sourceName is the human-readable name for this source.
	sourceName = "CORE"
)

// Config holds configuration for the CORE client.
type Config struct {
	// BaseURL is the CORE API base URL.
	BaseURL string

	// APIKey is the CORE API key, sent as a Bearer token.
	// Required for production use.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	MaxResults int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
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

// Client implements the papersources.PaperSource interface for CORE.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Compile-time check that Client implements PaperSource.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new CORE client with the given configuration.
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

// NewWithHTTPClient creates a new CORE client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries CORE for works matching the given parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		papers = append(papers, c.workToPaper(&searchResp.Results[i]))
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   searchResp.TotalHits,
		Source:         domain.SourceTypeCORE,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCORE
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the /search/works URL.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/search/works"

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}

	q := url.Values{}
	q.Set("q", params.Query)
	q.Set("limit", strconv.Itoa(limit))

	baseURL.RawQuery = q.Encode()
	return baseURL.String(), nil
}

// handleErrorResponse converts a non-200 response to an ExternalAPIError,
// preferring the API's own message when the body parses.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var errResp ErrorResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return domain.NewExternalAPIError(sourceName, resp.StatusCode, message, nil)
}

// workToPaper converts a CORE work to a domain Paper.
func (c *Client) workToPaper(work *WorkResult) *domain.Paper {
	id := strconv.FormatInt(work.ID, 10)

	paper := &domain.Paper{
		ID:            id,
		Source:        domain.SourceTypeCORE,
		Title:         work.Title,
		Abstract:      work.Abstract,
		Year:          work.YearPublished,
		CitationCount: work.CitationCount,
		DOI:           work.DOI,
		URL:           workPageURL + id,
		PDFURL:        work.DownloadURL,
	}

	for _, author := range work.Authors {
		if name := strings.TrimSpace(author.Name); name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	}

	if len(work.Journals) > 0 {
		paper.Journal = work.Journals[0].Title
	}

	paper.Normalize()
	return paper
}
