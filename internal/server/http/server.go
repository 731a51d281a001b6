// Package httpserver provides the HTTP REST API server for the paper search service.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openscholar/paper-search-service/internal/database"
	"github.com/openscholar/paper-search-service/internal/papersources"
	"github.com/openscholar/paper-search-service/internal/search"
	"github.com/openscholar/paper-search-service/internal/summarizer"
)

// Searcher runs the aggregation pipeline. It is satisfied by *search.Service.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// Summarizer generates paper summaries. It is satisfied by *summarizer.Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, title, abstract string) summarizer.Summary
}

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	searcher    Searcher
	summarizer  Summarizer
	registry    *papersources.Registry
	db          *database.DB // nil when the paper store is disabled
	logger      zerolog.Logger
	validate    *validator.Validate
	metricsOn   bool
	metricsPath string
}

// Config holds HTTP server configuration.
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MetricsEnabled bool
	MetricsPath    string
}

// NewServer creates a new HTTP server with all dependencies. db may be nil
// when the service runs without persistence; readiness then skips the
// database check.
func NewServer(
	cfg Config,
	searcher Searcher,
	summarizer Summarizer,
	registry *papersources.Registry,
	db *database.DB,
	logger zerolog.Logger,
) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	s := &Server{
		searcher:    searcher,
		summarizer:  summarizer,
		registry:    registry,
		db:          db,
		logger:      logger.With().Str("component", "http-server").Logger(),
		validate:    validator.New(),
		metricsOn:   cfg.MetricsEnabled,
		metricsPath: cfg.MetricsPath,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router returns the underlying chi router, primarily for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(s.recovererMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsOn {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Post("/search", s.searchHandler)
		r.Post("/papers/summarize", s.summarizeHandler)
		r.Get("/sources", s.sourcesHandler)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler returns readiness status including database connectivity
// when the paper store is enabled.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}
