package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name   string
		doc    ingestion.Document
		fields []string
	}{
		{"valid", ingestion.Document{ID: 1, Text: "funny pet", Status: index.StatusActual, Ratings: []int{7, 2, 7}}, nil},
		{"empty text is valid", ingestion.Document{ID: 0, Text: ""}, nil},
		{"negative id", ingestion.Document{ID: -1, Text: "cat"}, []string{"id"}},
		{"control character", ingestion.Document{ID: 3, Text: "big dog sparro\x12w"}, []string{"text"}},
		{"unknown status", ingestion.Document{ID: 4, Status: index.Status(9)}, []string{"status"}},
		{"too many ratings", ingestion.Document{ID: 5, Ratings: make([]int, maxRatings+1)}, []string{"ratings"}},
		{"too long", ingestion.Document{ID: 6, Text: strings.Repeat("a", maxTextLength+1)}, []string{"text"}},
		{"several", ingestion.Document{ID: -2, Status: index.Status(-1)}, []string{"id", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(&tt.doc)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tt.fields))
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"status": "bad", "id": "bad"}}
	assert.Equal(t, "id: bad; status: bad", err.Error())
}

func TestValidateEvent(t *testing.T) {
	assert.NoError(t, ValidateEvent(&ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: 1, Text: "cat"}}))
	assert.NoError(t, ValidateEvent(&ingestion.IngestEvent{Op: ingestion.OpRemove, Document: ingestion.Document{ID: 1}}))
	assert.Error(t, ValidateEvent(&ingestion.IngestEvent{Op: ingestion.OpRemove, Document: ingestion.Document{ID: -1}}))
	assert.Error(t, ValidateEvent(&ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: -1}}))
	assert.ErrorContains(t, ValidateEvent(&ingestion.IngestEvent{Op: "upsert"}), "unknown operation")
}
