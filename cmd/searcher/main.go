// Command searcher runs the TF-IDF search server.
//
// It builds the engine from the configured stop words, loads the initial
// corpus from a YAML file or a PostgreSQL table, removes duplicate
// documents, optionally follows the Kafka ingest topic, and serves the HTTP
// API, health probes and Prometheus metrics.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search server", "port", cfg.Server.Port, "corpus_source", cfg.Corpus.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("search server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := m.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}
	checker := health.NewChecker()

	docs, corpusStopWords, closeDB, err := loadCorpus(ctx, cfg, checker)
	if err != nil {
		return err
	}
	defer closeDB()

	engine, err := indexer.NewEngineFromWords(append(cfg.Search.AllStopWords(), corpusStopWords...))
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	opts := []service.Option{
		service.WithMetrics(m),
		service.WithRequestWindow(cfg.Search.RequestWindow),
	}

	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{
				OnStateChange: func(name string, to resilience.State) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				},
			})
			queryCache := cache.New(redisClient, cfg.Redis.CacheTTL, breaker)
			opts = append(opts, service.WithCache(queryCache))
			checker.Register("redis", health.PingCheck(redisClient.Ping, health.StatusDegraded))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		opts = append(opts, service.WithTracker(collector))
	}

	svc := service.New(engine, opts...)
	indexCorpus(ctx, svc, docs)
	if cfg.Search.RemoveDuplicates {
		if _, err := svc.RemoveDuplicates(ctx); err != nil {
			return fmt.Errorf("removing duplicates: %w", err)
		}
	}
	slog.Info("index ready", "documents", svc.Stats().Index.Documents, "terms", svc.Stats().Index.Terms)

	if cfg.Kafka.Enabled {
		ingestConsumer := consumer.New(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, consumer.HandleMessage(svc)))
		go func() {
			if err := ingestConsumer.Start(ctx); err != nil {
				slog.Error("ingest consumer error", "error", err)
			}
		}()
	}

	checker.Register("index_engine", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents", svc.Stats().Index.Documents),
		}
	})

	mux := http.NewServeMux()
	handler.New(svc, cfg.Search.PageSize).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Metrics(m),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = append(chain, middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)))
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter := middleware.NewLimiter(rl.Requests, rl.Window)
		go limiter.Sweep(ctx, rl.Window)
		chain = append(chain, middleware.RateLimit(limiter))
		slog.Info("rate limiting enabled", "requests", rl.Requests, "window", rl.Window)
	}
	chain = append(chain, middleware.Timeout(cfg.Server.WriteTimeout))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      middleware.Chain(mux, chain...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// loadCorpus reads the configured initial documents. The returned close func
// releases the database, if one was opened.
func loadCorpus(ctx context.Context, cfg *config.Config, checker *health.Checker) ([]ingestion.Document, []string, func(), error) {
	noop := func() {}
	switch cfg.Corpus.Source {
	case config.CorpusFile:
		c, err := corpus.LoadFile(cfg.Corpus.Path)
		if err != nil {
			return nil, nil, noop, err
		}
		return c.Documents, c.StopWords, noop, nil
	case config.CorpusPostgres:
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, noop, err
		}
		checker.Register("postgres", health.PingCheck(db.Ping, health.StatusDegraded))
		var docs []ingestion.Document
		err = resilience.WithTimeout(ctx, cfg.Corpus.LoadTimeout, "load corpus", func(ctx context.Context) error {
			return resilience.Retry(ctx, "load corpus", resilience.RetryConfig{}, func() error {
				var err error
				docs, err = corpus.LoadPostgres(ctx, db.DB, cfg.Corpus.Table)
				if errors.Is(err, apperrors.ErrInvalidArgument) {
					return resilience.Permanent(err)
				}
				return err
			})
		})
		if err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return docs, nil, func() { db.Close() }, nil
	default:
		return nil, nil, noop, nil
	}
}

// indexCorpus adds docs one by one; a rejected document is logged and the
// rest still load.
func indexCorpus(ctx context.Context, svc *service.Service, docs []ingestion.Document) {
	defer tracing.LogDuration(slog.Default(), "index corpus")()
	var failed int
	for i, err := range svc.AddDocuments(ctx, docs) {
		if err != nil {
			failed++
			slog.Warn("corpus document skipped", "doc_id", docs[i].ID, "error", err)
		}
	}
	slog.Info("corpus indexed", "documents", len(docs)-failed, "failed", failed)
}
