// Command ingestion publishes documents to the ingest topic consumed by the
// search server. It reads a corpus file and emits one add event per valid
// document, or a single remove event with -remove.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml] [-corpus configs/corpus.yaml]
//	go run ./cmd/ingestion -remove 42
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flag.String("corpus", "", "corpus file to publish (defaults to corpus.path)")
	removeID := flag.Int("remove", -1, "publish a remove event for this document id instead")
	batchSize := flag.Int("batch", 100, "events per Kafka write")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()
	pub := publisher.New(producer, *batchSize)

	if *removeID >= 0 {
		if err := pub.PublishRemove(ctx, *removeID); err != nil {
			slog.Error("failed to publish remove", "doc_id", *removeID, "error", err)
			os.Exit(1)
		}
		slog.Info("remove published", "doc_id", *removeID, "topic", cfg.Kafka.Topics.DocumentIngest)
		return
	}

	path := *corpusPath
	if path == "" {
		path = cfg.Corpus.Path
	}
	c, err := corpus.LoadFile(path)
	if err != nil {
		slog.Error("failed to load corpus", "path", path, "error", err)
		os.Exit(1)
	}

	done := tracing.LogDuration(slog.Default(), "publish corpus")
	res, err := pub.PublishAdds(ctx, c.Documents)
	done()
	if err != nil {
		slog.Error("failed to publish corpus", "published", res.Published, "error", err)
		os.Exit(1)
	}
	slog.Info("corpus published",
		"path", path,
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"published", res.Published,
		"skipped", res.Skipped,
	)
}
