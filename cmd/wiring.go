package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/http/api"
	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/http/site"
	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/http/swagger"
	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/inference"
	service "github.com/TJ-dotcom/ApexMatchAI/internal/app"
	"github.com/TJ-dotcom/ApexMatchAI/internal/config"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/extract"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/ranking"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/scoring"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/taxonomy"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
)

// setup loads configuration and initialises the global logger from it.
func setup(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.WithFile(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// inferenceConfig maps process configuration onto the model backends.
func inferenceConfig(cfg *config.Config) inference.Config {
	return inference.Config{
		Embedder:     cfg.Embedder,
		Reranker:     cfg.Reranker,
		Dimensions:   cfg.EmbeddingDimensions,
		Timeout:      cfg.ModelTimeout(),
		TEIEmbedURL:  cfg.TEIEmbedURL,
		TEIRerankURL: cfg.TEIRerankURL,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiEmbeddingModel,
		RedisAddr:    cfg.RedisAddr,
		RedisDB:      cfg.RedisDB,
		CacheTTL:     cfg.EmbeddingCacheTTL(),
	}
}

// newRanker assembles the ranking pipeline. Models load lazily, so an
// unreachable backend degrades requests instead of failing startup.
func newRanker(cfg *config.Config) (*ranking.Ranker, error) {
	tax := taxonomy.Default()
	if cfg.TaxonomyFile != "" {
		loaded, err := taxonomy.LoadFile(cfg.TaxonomyFile)
		if err != nil {
			return nil, err
		}
		tax = loaded
	}

	icfg := inferenceConfig(cfg)
	embedder, err := inference.NewEmbedder(icfg)
	if err != nil {
		return nil, err
	}
	crossEncoder, err := inference.NewCrossEncoder(icfg)
	if err != nil {
		return nil, err
	}

	return ranking.New(
		ranking.WithExtractor(extract.New(
			extract.WithTaxonomy(tax),
			extract.WithQualifierScope(extract.QualifierScope(cfg.QualifierScope)),
		)),
		ranking.WithScorer(scoring.New(scoring.WithTaxonomy(tax))),
		ranking.WithEmbedder(embedder),
		ranking.WithCrossEncoder(crossEncoder),
		ranking.WithRerankTopN(cfg.RerankTopN),
		ranking.WithParallelism(cfg.ExtractParallelism),
	), nil
}

// newService creates the ranking service from configuration.
func newService(cfg *config.Config, r *ranking.Ranker) *service.Service {
	return service.New(
		service.WithLogger(logger.Named("service")),
		service.WithRanker(r),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithTaskRetention(cfg.TaskRetention()),
		service.WithMaxJobs(cfg.MaxJobsPerRequest),
		service.WithMaxLimit(cfg.MaxLimit),
	)
}

// newMux registers the API, the docs, and the landing page.
func newMux(ctx context.Context, svc *service.Service, defaultLimit int) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, defaultLimit)
	apiServer.Register(ctx, mux)

	return mux
}

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
