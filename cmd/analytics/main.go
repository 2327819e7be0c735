// Command analytics runs the standalone analytics aggregation service.
//
// It consumes the search server's analytics events from Kafka, folds them in
// memory (searches, zero-result queries, cache hit rate, latency percentiles,
// indexed and removed documents) and serves the totals at
// GET /api/v1/analytics. With analytics.snapshots enabled the totals are
// saved to PostgreSQL periodically and restored at startup.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/postgres"
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
	slog.Info("starting analytics service", "port", cfg.Analytics.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	checker := health.NewChecker()
	m := metrics.New()
	mux := http.NewServeMux()

	var snapshotsDone chan struct{}
	if cfg.Analytics.Snapshots {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store, err := snapshot.NewStore(db.DB, cfg.Analytics.SnapshotTable)
		if err != nil {
			slog.Error("invalid snapshot store", "error", err)
			os.Exit(1)
		}
		latest, err := store.Latest(ctx)
		switch {
		case err != nil:
			slog.Warn("could not load latest analytics snapshot", "error", err)
		case latest != nil:
			aggregator.Restore(*latest)
			slog.Info("analytics totals restored", "total_searches", latest.TotalSearches)
		}
		snapshotsDone = make(chan struct{})
		go func() {
			defer close(snapshotsDone)
			snapshot.Run(ctx, store, aggregator.Stats, cfg.Analytics.SnapshotInterval)
		}()
		mux.HandleFunc("GET /api/v1/analytics/snapshots", snapshot.ListHandler(store))
		checker.Register("postgres", health.PingCheck(db.Ping, health.StatusDegraded))
		slog.Info("analytics snapshots enabled", "table", cfg.Analytics.SnapshotTable, "interval", cfg.Analytics.SnapshotInterval)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, aggregator.HandleMessage())
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	checker.Register("kafka", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})

	mux.HandleFunc("GET /api/v1/analytics", analytics.NewAggregateHandler(aggregator).Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Analytics.Port),
		Handler:      middleware.Chain(mux, middleware.RequestID, middleware.Metrics(m)),
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	if snapshotsDone != nil {
		<-snapshotsDone
	}
	slog.Info("analytics service stopped")
}
