// Package semanticscholar provides a client for the Semantic Scholar Graph API.
//
// The Graph API documentation is available at:
// https://api.semanticscholar.org/api-docs/graph
package semanticscholar

// SearchResponse represents the paper search response envelope.
type SearchResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   int           `json:"next"`
	Data   []PaperResult `json:"data"`
}

// PaperResult represents a single paper in the API response.
type PaperResult struct {
	PaperID       string         `json:"paperId"`
	Title         string         `json:"title"`
	Abstract      string         `json:"abstract"`
	Year          int            `json:"year"`
	CitationCount int            `json:"citationCount"`
	URL           string         `json:"url"`
	Authors       []Author       `json:"authors"`
	Journal       *Journal       `json:"journal"`
	ExternalIDs   *ExternalIDs   `json:"externalIds"`
	OpenAccessPDF *OpenAccessPDF `json:"openAccessPdf"`
}

// Author represents a paper author.
type Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// Journal represents journal metadata.
type Journal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Pages  string `json:"pages"`
}

// ExternalIDs holds identifiers in other systems.
type ExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

// OpenAccessPDF holds the open-access PDF link when one exists.
type OpenAccessPDF struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// ErrorResponse represents an error payload from the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
