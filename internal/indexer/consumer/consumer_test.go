package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	added   []ingestion.Document
	removed []int
	addErr  error
}

func (s *fakeSink) AddDocument(_ context.Context, doc ingestion.Document) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, doc)
	return nil
}

func (s *fakeSink) RemoveDocument(_ context.Context, id int) bool {
	s.removed = append(s.removed, id)
	return true
}

func encode(t *testing.T, event ingestion.IngestEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestHandleMessageAppliesEvents(t *testing.T) {
	sink := &fakeSink{}
	handle := HandleMessage(sink)
	ctx := context.Background()

	add := ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{
		ID: 4, Text: "curly dog", Status: index.StatusBanned, Ratings: []int{1, 2},
	}}
	require.NoError(t, handle(ctx, []byte("4"), encode(t, add)))
	require.NoError(t, handle(ctx, []byte("4"), encode(t, ingestion.IngestEvent{Op: ingestion.OpRemove, Document: ingestion.Document{ID: 4}})))

	require.Len(t, sink.added, 1)
	assert.Equal(t, index.StatusBanned, sink.added[0].Status)
	assert.Equal(t, []int{4}, sink.removed)
}

func TestHandleMessageSkipsBadInput(t *testing.T) {
	sink := &fakeSink{}
	handle := HandleMessage(sink)
	ctx := context.Background()

	assert.NoError(t, handle(ctx, nil, []byte("{not json")))
	assert.NoError(t, handle(ctx, nil, []byte(`{"op":"add","document":{"id":1,"status":"UNKNOWN"}}`)))
	assert.NoError(t, handle(ctx, nil, encode(t, ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: -3}})))
	assert.NoError(t, handle(ctx, nil, encode(t, ingestion.IngestEvent{Op: "upsert", Document: ingestion.Document{ID: 1}})))
	assert.Empty(t, sink.added)

	sink.addErr = apperrors.InvalidArgumentf("document id %d already exists", 1)
	assert.NoError(t, handle(ctx, nil, encode(t, ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: 1}})))
}

func TestHandleMessageSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("engine unavailable")
	handle := HandleMessage(&fakeSink{addErr: boom})
	err := handle(context.Background(), nil, encode(t, ingestion.IngestEvent{Op: ingestion.OpAdd, Document: ingestion.Document{ID: 1}}))
	assert.ErrorIs(t, err, boom)
}
