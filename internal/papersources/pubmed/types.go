// Package pubmed provides a client for the NCBI PubMed E-utilities API.
//
// Searching is a two-step call: esearch.fcgi resolves a query to a list of
// PMIDs, then esummary.fcgi returns document summaries (title, authors,
// journal, date) for the joined ID list. Summaries carry no abstracts and no
// citation counts; those fields are left empty/zero rather than guessed.
//
// The E-utilities API documentation is available at:
// https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import "encoding/xml"

// ESearchResult represents the response from the esearch.fcgi endpoint.
// This endpoint returns a list of PMIDs matching a search query.
type ESearchResult struct {
	XMLName   xml.Name   `xml:"eSearchResult"`
	Count     int        `xml:"Count"`
	RetMax    int        `xml:"RetMax"`
	RetStart  int        `xml:"RetStart"`
	IDList    IDList     `xml:"IdList"`
	ErrorList *ErrorList `xml:"ErrorList,omitempty"`
}

// IDList contains the list of PMIDs returned by a search.
type IDList struct {
	IDs []string `xml:"Id"`
}

// ErrorList contains errors from the E-utilities API.
type ErrorList struct {
	PhraseNotFound []string `xml:"PhraseNotFound,omitempty"`
	FieldNotFound  []string `xml:"FieldNotFound,omitempty"`
}

// ESummaryResult represents the response from the esummary.fcgi endpoint.
type ESummaryResult struct {
	XMLName xml.Name `xml:"eSummaryResult"`
	DocSums []DocSum `xml:"DocSum"`
}

// DocSum is one document summary. Fields are a flat list of typed items
// keyed by the Name attribute; list items nest further items.
type DocSum struct {
	ID    string `xml:"Id"`
	Items []Item `xml:"Item"`
}

// Item is a single esummary field. List-typed items (e.g. AuthorList)
// contain nested items.
type Item struct {
	Name  string `xml:"Name,attr"`
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
	Items []Item `xml:"Item"`
}
