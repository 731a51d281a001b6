// Package crossref provides a client for the CrossRef Works API.
//
// The REST API documentation is available at:
// https://api.crossref.org/swagger-ui/index.html
package crossref

// WorksResponse is the envelope returned by the /works endpoint.
type WorksResponse struct {
	Status      string  `json:"status"`
	MessageType string  `json:"message-type"`
	Message     Message `json:"message"`
}

// Message contains the search results and paging metadata.
type Message struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// Work represents a single work (article, book chapter, etc.).
type Work struct {
	DOI            string     `json:"DOI"`
	Title          []string   `json:"title"`
	Author         []Author   `json:"author"`
	ContainerTitle []string   `json:"container-title"`
	CitedByCount   int        `json:"is-referenced-by-count"`
	URL            string     `json:"URL"`
	Abstract       string     `json:"abstract"`
	Published      *DateParts `json:"published"`
	PublishedPrint *DateParts `json:"published-print"`
	Links          []Link     `json:"link"`
}

// Author represents a work author with separate given/family names.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"` // organizations carry a single name field
}

// DateParts holds CrossRef's nested date representation: [[year, month, day]].
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Link is a full-text link attached to a work.
type Link struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}
