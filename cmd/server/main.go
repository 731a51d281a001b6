// Package main provides the entry point for the paper search service HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openscholar/paper-search-service/internal/config"
	"github.com/openscholar/paper-search-service/internal/database"
	"github.com/openscholar/paper-search-service/internal/enhancer"
	"github.com/openscholar/paper-search-service/internal/events"
	"github.com/openscholar/paper-search-service/internal/llm"
	"github.com/openscholar/paper-search-service/internal/observability"
	"github.com/openscholar/paper-search-service/internal/papersources"
	"github.com/openscholar/paper-search-service/internal/papersources/arxiv"
	"github.com/openscholar/paper-search-service/internal/papersources/coreapi"
	"github.com/openscholar/paper-search-service/internal/papersources/crossref"
	"github.com/openscholar/paper-search-service/internal/papersources/pubmed"
	"github.com/openscholar/paper-search-service/internal/papersources/semanticscholar"
	"github.com/openscholar/paper-search-service/internal/repository"
	"github.com/openscholar/paper-search-service/internal/search"
	httpserver "github.com/openscholar/paper-search-service/internal/server/http"
	"github.com/openscholar/paper-search-service/internal/summarizer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-search-service starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Paper store: optional. When disabled the service is search-only.
	var (
		db    *database.DB
		store search.PaperStore
	)
	if cfg.Database.Enabled {
		db, err = database.New(ctx, &cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if cfg.Database.MigrationAutoRun {
			migrator, merr := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
			if merr != nil {
				return fmt.Errorf("create migrator: %w", merr)
			}
			if err := migrator.Up(); err != nil {
				migrator.Close()
				return fmt.Errorf("run migrations: %w", err)
			}
			if err := migrator.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close migrator")
			}
		}

		store = repository.NewPgPaperRepository(db)
	}

	// LLM completer: optional. Without it enhancement is the identity and
	// summaries are extractive.
	var completer llm.Completer
	if cfg.LLM.Enabled {
		completer, err = llm.NewCompleter(llm.FactoryConfig{
			Provider:   cfg.LLM.Provider,
			Timeout:    cfg.LLM.Timeout,
			MaxRetries: cfg.LLM.MaxRetries,
			OpenAI: llm.OpenAIConfig{
				APIKey:  cfg.LLM.OpenAI.APIKey,
				Model:   cfg.LLM.OpenAI.Model,
				BaseURL: cfg.LLM.OpenAI.BaseURL,
			},
			Anthropic: llm.AnthropicConfig{
				APIKey:  cfg.LLM.Anthropic.APIKey,
				Model:   cfg.LLM.Anthropic.Model,
				BaseURL: cfg.LLM.Anthropic.BaseURL,
			},
		})
		if err != nil {
			return fmt.Errorf("create LLM completer: %w", err)
		}
		logger.Info().Str("provider", cfg.LLM.Provider).Msg("LLM completer configured")
	}

	// Event publisher: Kafka when enabled, otherwise a no-op.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher configured")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	registry := buildRegistry(cfg)

	searchService := search.NewService(
		registry,
		enhancer.New(completer, logger, metrics),
		store,
		publisher,
		logger,
		metrics,
		search.Config{
			DefaultLimit:      cfg.Search.DefaultLimit,
			PerSourceTimeout:  cfg.Search.PerSourceTimeout,
			SideEffectTimeout: cfg.Search.SideEffectTimeout,
		},
	)

	summarizerService := summarizer.New(completer, logger, metrics)

	httpSrv := httpserver.NewServer(
		httpserver.Config{
			Address:        cfg.Server.HTTPAddress(),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    2 * time.Minute,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
		},
		searchService,
		summarizerService,
		registry,
		db,
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().Str("http_address", cfg.Server.HTTPAddress()).Msg("paper-search-service is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown: stop accepting requests, then drain background
	// persistence and event publishing.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	searchService.Drain()

	logger.Info().Msg("paper-search-service stopped")
	return nil
}

// buildRegistry creates the source registry with every configured adapter.
func buildRegistry(cfg *config.Config) *papersources.Registry {
	registry := papersources.NewRegistry()

	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:    cfg.Sources.ArXiv.BaseURL,
		Timeout:    cfg.Sources.ArXiv.Timeout,
		RateLimit:  cfg.Sources.ArXiv.RateLimit,
		MaxResults: cfg.Sources.ArXiv.MaxResults,
		Enabled:    cfg.Sources.ArXiv.Enabled,
	}))

	registry.Register(semanticscholar.New(semanticscholar.Config{
		BaseURL:    cfg.Sources.SemanticScholar.BaseURL,
		APIKey:     cfg.Sources.SemanticScholar.APIKey,
		Timeout:    cfg.Sources.SemanticScholar.Timeout,
		RateLimit:  cfg.Sources.SemanticScholar.RateLimit,
		MaxResults: cfg.Sources.SemanticScholar.MaxResults,
		Enabled:    cfg.Sources.SemanticScholar.Enabled,
	}))

	registry.Register(pubmed.New(pubmed.Config{
		BaseURL:    cfg.Sources.PubMed.BaseURL,
		APIKey:     cfg.Sources.PubMed.APIKey,
		Timeout:    cfg.Sources.PubMed.Timeout,
		RateLimit:  cfg.Sources.PubMed.RateLimit,
		MaxResults: cfg.Sources.PubMed.MaxResults,
		Enabled:    cfg.Sources.PubMed.Enabled,
	}))

	registry.Register(crossref.New(crossref.Config{
		BaseURL:    cfg.Sources.CrossRef.BaseURL,
		Mailto:     cfg.Sources.CrossRef.Mailto,
		Timeout:    cfg.Sources.CrossRef.Timeout,
		RateLimit:  cfg.Sources.CrossRef.RateLimit,
		MaxResults: cfg.Sources.CrossRef.MaxResults,
		Enabled:    cfg.Sources.CrossRef.Enabled,
	}))

	registry.Register(coreapi.New(coreapi.Config{
		BaseURL:    cfg.Sources.CORE.BaseURL,
		APIKey:     cfg.Sources.CORE.APIKey,
		Timeout:    cfg.Sources.CORE.Timeout,
		RateLimit:  cfg.Sources.CORE.RateLimit,
		MaxResults: cfg.Sources.CORE.MaxResults,
		Enabled:    cfg.Sources.CORE.Enabled,
	}))

	return registry
}
