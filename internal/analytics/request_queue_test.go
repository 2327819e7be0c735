package analytics

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchEngine(t *testing.T) *indexer.Engine {
	t.Helper()
	e, err := indexer.NewEngineFromText("and in at")
	require.NoError(t, err)
	docs := []struct {
		id      int
		text    string
		ratings []int
	}{
		{1, "curly cat curly tail", []int{7, 2, 7}},
		{2, "curly dog and fancy collar", []int{1, 2, 3}},
		{3, "big cat fancy collar ", []int{1, 2, 8}},
		{4, "big dog sparrow Eugene", []int{1, 3, 2}},
		{5, "big dog sparrow Vasiliy", []int{1, 1, 1}},
	}
	for _, d := range docs {
		require.NoError(t, e.AddDocument(d.id, d.text, index.StatusActual, d.ratings))
	}
	return e
}

func TestRequestQueueRollingWindow(t *testing.T) {
	q := NewRequestQueue(newSearchEngine(t), MinutesInDay)

	for i := 0; i < 1439; i++ {
		docs, err := q.AddFindRequest("empty request")
		require.NoError(t, err)
		require.Empty(t, docs)
	}
	assert.Equal(t, 1439, q.NoResultRequests())

	_, err := q.AddFindRequest("curly dog")
	require.NoError(t, err)
	assert.Equal(t, 1439, q.NoResultRequests())

	_, err = q.AddFindRequest("big collar")
	require.NoError(t, err)
	assert.Equal(t, 1438, q.NoResultRequests())

	docs, err := q.AddFindRequest("sparrow")
	require.NoError(t, err)
	assert.NotEmpty(t, docs)
	assert.Equal(t, 1437, q.NoResultRequests())

	stats := q.Stats()
	assert.Equal(t, MinutesInDay, stats.Window)
	assert.Equal(t, MinutesInDay, stats.Requests)
	assert.Equal(t, uint64(1442), stats.TotalRequests)
}

func TestRequestQueueSmallWindow(t *testing.T) {
	q := NewRequestQueue(newSearchEngine(t), 2)

	_, err := q.AddFindRequestWithStatus("curly", index.StatusBanned)
	require.NoError(t, err)
	assert.Equal(t, 1, q.NoResultRequests())

	_, err = q.AddFindRequestFunc("curly", func(id int, _ index.Status, _ int) bool { return id == 2 })
	require.NoError(t, err)
	assert.Equal(t, 1, q.NoResultRequests())

	q.Record(false)
	assert.Equal(t, 0, q.NoResultRequests())
	assert.Equal(t, 2, q.Stats().Requests)
}

func TestRequestQueueSkipsFailedRequests(t *testing.T) {
	q := NewRequestQueue(newSearchEngine(t), 0)
	assert.Equal(t, MinutesInDay, q.Stats().Window)

	_, err := q.AddFindRequest("cat -")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Zero(t, q.Stats().TotalRequests)
	assert.Zero(t, q.NoResultRequests())
}
