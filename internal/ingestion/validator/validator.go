// Package validator checks documents before they reach the engine and
// reports every failing field at once.
package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

const (
	maxTextLength = 1 << 20
	maxRatings    = 1024
)

// ValidationError holds per-field validation failure messages. It matches
// apperrors.ErrInvalidArgument under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == apperrors.ErrInvalidArgument
}

// ValidateDocument checks id, status, text and ratings of doc.
func ValidateDocument(doc *ingestion.Document) error {
	errs := make(map[string]string)

	if doc.ID < 0 {
		errs["id"] = "id must not be negative"
	}
	if !doc.Status.Valid() {
		errs["status"] = fmt.Sprintf("unknown status %d", int(doc.Status))
	}
	if len(doc.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	} else {
		for _, w := range tokenizer.SplitIntoWords(doc.Text) {
			if !tokenizer.IsValidWord(w) {
				errs["text"] = fmt.Sprintf("word %q contains control characters", w)
				break
			}
		}
	}
	if len(doc.Ratings) > maxRatings {
		errs["ratings"] = fmt.Sprintf("at most %d ratings are allowed", maxRatings)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateEvent checks the operation of an ingest event and, for adds, its
// document.
func ValidateEvent(event *ingestion.IngestEvent) error {
	switch event.Op {
	case ingestion.OpAdd:
		return ValidateDocument(&event.Document)
	case ingestion.OpRemove:
		if event.Document.ID < 0 {
			return &ValidationError{Fields: map[string]string{"id": "id must not be negative"}}
		}
		return nil
	default:
		return &ValidationError{Fields: map[string]string{"op": fmt.Sprintf("unknown operation %q", event.Op)}}
	}
}
