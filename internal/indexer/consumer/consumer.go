// Package consumer applies document ingest events read from Kafka to the
// search service.
package consumer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

// DocumentSink is where ingest events land. *service.Service implements it.
type DocumentSink interface {
	AddDocument(ctx context.Context, doc ingestion.Document) error
	RemoveDocument(ctx context.Context, id int) bool
}

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a MessageHandler that applies each ingest event to
// sink. Undecodable events and documents the engine rejects are logged and
// committed, so one bad document never blocks the stream. Other failures
// leave the message uncommitted.
func HandleMessage(sink DocumentSink) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event", "error", err, "key", string(key))
			return nil
		}
		if err := validator.ValidateEvent(&event); err != nil {
			logger.Warn("invalid ingest event skipped", "doc_id", event.Document.ID, "op", event.Op, "error", err)
			return nil
		}

		switch event.Op {
		case ingestion.OpRemove:
			if !sink.RemoveDocument(ctx, event.Document.ID) {
				logger.Debug("remove of unknown document ignored", "doc_id", event.Document.ID)
			}
			return nil
		default:
			err := sink.AddDocument(ctx, event.Document)
			if errors.Is(err, apperrors.ErrInvalidArgument) {
				logger.Warn("document rejected", "doc_id", event.Document.ID, "error", err)
				return nil
			}
			if err != nil {
				return err
			}
			logger.Debug("document indexed", "doc_id", event.Document.ID, "ingested_at", event.IngestedAt)
			return nil
		}
	}
}
