// Package ingestion defines the document payload shared by the HTTP API, the
// corpus loaders and the Kafka ingest stream.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// Document is a document as submitted for indexing. Status travels as its
// name ("ACTUAL", "BANNED", ...).
type Document struct {
	ID      int          `json:"id" yaml:"id"`
	Text    string       `json:"text" yaml:"text"`
	Status  index.Status `json:"status" yaml:"status"`
	Ratings []int        `json:"ratings" yaml:"ratings"`
}

// Op is the action an IngestEvent asks the indexer to perform.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// IngestEvent is the Kafka message payload on the document ingest topic. For
// OpRemove only Document.ID is used.
type IngestEvent struct {
	Op         Op        `json:"op"`
	Document   Document  `json:"document"`
	IngestedAt time.Time `json:"ingested_at"`
}
