package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/openscholar/paper-search-service/internal/domain"
	"github.com/openscholar/paper-search-service/internal/observability"
	"github.com/openscholar/paper-search-service/internal/search"
)

// maxRequestBodySize bounds request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// searchRequest is the JSON request body for POST /api/v1/search.
type searchRequest struct {
	Query   string         `json:"query"`
	Sources []string       `json:"sources,omitempty"`
	Filters *filterRequest `json:"filters,omitempty"`
	Limit   int            `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// filterRequest narrows the result set after collection. Year arrives as a
// string from form-driven clients and is parsed server-side.
type filterRequest struct {
	Author       string `json:"author,omitempty"`
	Year         string `json:"year,omitempty"`
	MinCitations int    `json:"minCitations,omitempty" validate:"omitempty,min=0"`
	Domain       string `json:"domain,omitempty"`
}

// summarizeRequest is the JSON request body for POST /api/v1/papers/summarize.
type summarizeRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
}

// searchHandler handles POST /api/v1/search. It runs the full aggregation
// pipeline; upstream failures degrade the result set rather than failing the
// request.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "invalid search request", err.Error())
		return
	}
	if req.Filters != nil {
		if err := s.validate.Struct(req.Filters); err != nil {
			writeErrorDetails(w, http.StatusBadRequest, "invalid search filters", err.Error())
			return
		}
	}

	// Unknown source names are ignored; the pipeline falls back to all
	// enabled sources when nothing valid remains.
	var sources []domain.SourceType
	for _, name := range req.Sources {
		if st, ok := domain.ParseSourceType(name); ok {
			sources = append(sources, st)
		} else {
			s.logger.Debug().Str("source", name).Msg("ignoring unknown source")
		}
	}

	var filters search.Filters
	if req.Filters != nil {
		filters = search.Filters{
			Author:       req.Filters.Author,
			MinCitations: req.Filters.MinCitations,
			Domain:       req.Filters.Domain,
		}
		if y := strings.TrimSpace(req.Filters.Year); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				writeErrorDetails(w, http.StatusBadRequest, "invalid search filters", "year must be a number")
				return
			}
			filters.Year = year
		}
	}

	// Carry the inbound request ID into the pipeline so logs and the
	// completion event correlate with the HTTP request.
	ctx := r.Context()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		ctx = observability.WithRequestID(ctx, reqID)
	}

	result, err := s.searcher.Search(ctx, search.Request{
		Query:   req.Query,
		Sources: sources,
		Filters: filters,
		Limit:   req.Limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Msg("search failed")
		writeErrorDetails(w, http.StatusInternalServerError, "search failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Papers:        result.Papers,
		Total:         result.Total,
		Clusters:      result.Clusters,
		EnhancedQuery: result.EnhancedQuery,
		SourcesUsed:   result.SourcesUsed,
	})
}

// summarizeHandler handles POST /api/v1/papers/summarize. Summarization
// never fails: without an LLM it degrades to the extractive fallback.
func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Abstract = strings.TrimSpace(req.Abstract)
	if req.Title == "" && req.Abstract == "" {
		writeError(w, http.StatusBadRequest, "Title or abstract is required")
		return
	}

	summary := s.summarizer.Summarize(r.Context(), req.Title, req.Abstract)
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

// sourcesHandler handles GET /api/v1/sources.
func (s *Server) sourcesHandler(w http.ResponseWriter, r *http.Request) {
	enabled := s.registry.EnabledSources()
	resp := listSourcesResponse{Sources: make([]sourceResponse, 0, len(enabled))}
	for _, src := range enabled {
		resp.Sources = append(resp.Sources, sourceResponse{
			Type:    string(src.SourceType()),
			Name:    src.Name(),
			Enabled: true,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads and unmarshals a JSON request body, writing a 400 response
// and returning false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if len(body) == 0 {
		// An absent body is treated as an empty document so the handlers
		// report which field is missing.
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}
