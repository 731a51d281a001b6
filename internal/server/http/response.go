package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/summarizer"
)

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// searchResponse is the JSON body for POST /api/v1/search.
type searchResponse struct {
	Papers        []*domain.Paper  `json:"papers"`
	Total         int              `json:"total"`
	Clusters      []domain.Cluster `json:"clusters"`
	EnhancedQuery string           `json:"enhanced_query"`
	SourcesUsed   []string         `json:"sources_used"`
}

// summarizeResponse is the JSON body for POST /api/v1/papers/summarize.
type summarizeResponse struct {
	Summary summarizer.Summary `json:"summary"`
}

// sourceResponse describes one paper source in GET /api/v1/sources.
type sourceResponse struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type listSourcesResponse struct {
	Sources []sourceResponse `json:"sources"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeErrorDetails writes a JSON error response with a details field.
func writeErrorDetails(w http.ResponseWriter, statusCode int, message, details string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Details: details})
}
