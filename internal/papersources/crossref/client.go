package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default CrossRef REST API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for polite-pool usage.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 25

	// doiResolverPrefix builds the fallback URL for works without their own.
	doiResolverPrefix = "https://doi.org/"

	// sourceName is the human-readable name for this source.
	sourceName = "CrossRef"
)

// jatsTagRegex strips JATS markup from CrossRef abstracts.
var jatsTagRegex = regexp.MustCompile(`<[^>]+>`)

// Config holds configuration for the CrossRef client.
type Config struct {
	// BaseURL is the CrossRef API base URL.
	BaseURL string

	// Mailto is included in requests to join CrossRef's polite pool.
	Mailto string

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

// Client implements the papersources.PaperSource interface for CrossRef.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Compile-time check that Client implements PaperSource.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new CrossRef client with the given configuration.
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

// NewWithHTTPClient creates a new CrossRef client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries CrossRef for works matching the given parameters,
// sorted by relevance.
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var worksResp WorksResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&worksResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]*domain.Paper, 0, len(worksResp.Message.Items))
	for i := range worksResp.Message.Items {
		paper := c.workToPaper(&worksResp.Message.Items[i])
		if paper != nil {
			papers = append(papers, paper)
		}
	}

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   worksResp.Message.TotalResults,
		Source:         domain.SourceTypeCrossRef,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCrossRef
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the /works search URL.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/works"

	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("sort", "relevance")
	q.Set("order", "desc")

	rows := params.MaxResults
	if rows <= 0 || rows > c.config.MaxResults {
		rows = c.config.MaxResults
	}
	q.Set("rows", strconv.Itoa(rows))

	if c.config.Mailto != "" {
		q.Set("mailto", c.config.Mailto)
	}

	baseURL.RawQuery = q.Encode()
	return baseURL.String(), nil
}

// workToPaper converts a CrossRef work to a domain Paper.
func (c *Client) workToPaper(work *Work) *domain.Paper {
	if work == nil || work.DOI == "" {
		return nil
	}

	paper := &domain.Paper{
		ID:            work.DOI,
		Source:        domain.SourceTypeCrossRef,
		DOI:           work.DOI,
		CitationCount: work.CitedByCount,
		Authors:       displayNames(work.Author),
		Abstract:      domain.CollapseWhitespace(jatsTagRegex.ReplaceAllString(work.Abstract, " ")),
		Year:          publicationYear(work),
	}

	if len(work.Title) > 0 {
		paper.Title = work.Title[0]
	}
	if len(work.ContainerTitle) > 0 {
		paper.Journal = work.ContainerTitle[0]
	}

	paper.URL = work.URL
	if paper.URL == "" {
		paper.URL = doiResolverPrefix + work.DOI
	}

	for _, link := range work.Links {
		if link.ContentType == "application/pdf" {
			paper.PDFURL = link.URL
			break
		}
	}

	paper.Normalize()
	return paper
}

// displayNames concatenates given and family names into display names,
// falling back to the single-field name used for organizations.
func displayNames(authors []Author) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// publicationYear extracts the year from the published date, preferring the
// general published field over published-print.
func publicationYear(work *Work) int {
	for _, dp := range []*DateParts{work.Published, work.PublishedPrint} {
		if dp != nil && len(dp.DateParts) > 0 && len(dp.DateParts[0]) > 0 {
			return dp.DateParts[0][0]
		}
	}
	return 0
}
