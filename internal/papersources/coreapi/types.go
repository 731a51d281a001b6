// Package coreapi provides a client for the CORE v3 API, an aggregator of
// open access research papers.
//
// The API documentation is available at: https://api.core.ac.uk/docs/v3
package coreapi

// SearchResponse is the envelope returned by the /search/works endpoint.
type SearchResponse struct {
	TotalHits int          `json:"totalHits"`
	Limit     int          `json:"limit"`
	Offset    int          `json:"offset"`
	Results   []WorkResult `json:"results"`
}

// WorkResult represents a single work in the search results.
type WorkResult struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Abstract      string    `json:"abstract"`
	Authors       []Author  `json:"authors"`
	YearPublished int       `json:"yearPublished"`
	Journals      []Journal `json:"journals"`
	DOI           string    `json:"doi"`
	DownloadURL   string    `json:"downloadUrl"`
	CitationCount int       `json:"citationCount"`
}

// Author represents a work author.
type Author struct {
	Name string `json:"name"`
}

// Journal represents a journal a work was published in.
type Journal struct {
	Title string `json:"title"`
}

// ErrorResponse represents an error response from the CORE API.
type ErrorResponse struct {
	Message string `json:"message"`
}
