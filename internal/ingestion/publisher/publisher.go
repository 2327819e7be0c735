// Package publisher turns documents into ingest events on the Kafka
// document topic. Events are keyed by document id so every event of one
// document stays on one partition, in order.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

// Producer is the part of *kafka.Producer the publisher uses.
type Producer interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type Publisher struct {
	producer  Producer
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func New(producer Producer, batchSize int) *Publisher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Publisher{
		producer:  producer,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "publisher"),
		now:       time.Now,
	}
}

// Result summarizes a publish run.
type Result struct {
	Published int
	Skipped   int
}

// PublishAdds validates docs and publishes an add event for each valid one,
// in batches. Invalid documents are logged and skipped.
func (p *Publisher) PublishAdds(ctx context.Context, docs []ingestion.Document) (Result, error) {
	var res Result
	batch := make([]kafka.Event, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.producer.PublishBatch(ctx, batch); err != nil {
			return fmt.Errorf("publishing ingest batch: %w", err)
		}
		res.Published += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, doc := range docs {
		if err := validator.ValidateDocument(&doc); err != nil {
			p.logger.Warn("skipping invalid document", "doc_id", doc.ID, "error", err)
			res.Skipped++
			continue
		}
		batch = append(batch, p.event(ingestion.OpAdd, doc))
		if len(batch) == p.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	p.logger.Info("documents published", "published", res.Published, "skipped", res.Skipped)
	return res, nil
}

// PublishRemove publishes a remove event for id.
func (p *Publisher) PublishRemove(ctx context.Context, id int) error {
	event := p.event(ingestion.OpRemove, ingestion.Document{ID: id})
	if err := p.producer.PublishBatch(ctx, []kafka.Event{event}); err != nil {
		return fmt.Errorf("publishing remove of %d: %w", id, err)
	}
	return nil
}

func (p *Publisher) event(op ingestion.Op, doc ingestion.Document) kafka.Event {
	return kafka.Event{
		Key: strconv.Itoa(doc.ID),
		Value: ingestion.IngestEvent{
			Op:         op,
			Document:   doc,
			IngestedAt: p.now().UTC(),
		},
	}
}
