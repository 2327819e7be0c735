package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []analytics.AggregatedStats
}

func (r *recordingSaver) Save(ctx context.Context, stats analytics.AggregatedStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, stats)
	return ctx.Err()
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func TestRunSavesPeriodicallyAndOnShutdown(t *testing.T) {
	saver := &recordingSaver{}
	var n int64
	source := func() analytics.AggregatedStats {
		n++
		return analytics.AggregatedStats{TotalSearches: n}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, saver, source, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return saver.count() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	saver.mu.Lock()
	defer saver.mu.Unlock()
	last := saver.saved[len(saver.saved)-1]
	assert.Equal(t, int64(len(saver.saved)), last.TotalSearches, "final snapshot is taken after cancel")
}

func TestNewStoreRejectsUnsafeTable(t *testing.T) {
	_, err := NewStore(nil, "snapshots; DROP TABLE x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	s, err := NewStore(nil, "analytics_snapshots")
	require.NoError(t, err)
	assert.Equal(t, "analytics_snapshots", s.table)
}

func TestDecode(t *testing.T) {
	stats, err := decode([]byte(`{"total_searches": 7, "removed_by_reason": {"duplicate": 2}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalSearches)
	assert.Equal(t, int64(2), stats.RemovedByReason["duplicate"])

	_, err = decode([]byte("not json"))
	assert.Error(t, err)
}

type fakeLister struct {
	limit int
	err   error
}

func (f *fakeLister) List(_ context.Context, limit int) ([]analytics.AggregatedStats, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []analytics.AggregatedStats{{TotalSearches: 3}, {TotalSearches: 1}}, nil
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		err       error
		wantCode  int
		wantLimit int
	}{
		{"default limit", "", nil, http.StatusOK, 10},
		{"explicit limit", "?limit=2", nil, http.StatusOK, 2},
		{"clamped high", "?limit=5000", nil, http.StatusOK, 100},
		{"clamped low", "?limit=0", nil, http.StatusOK, 1},
		{"bad limit", "?limit=ten", nil, http.StatusBadRequest, 0},
		{"store failure", "", errors.New("connection refused"), http.StatusInternalServerError, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{err: tt.err}
			rec := httptest.NewRecorder()
			ListHandler(lister)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots"+tt.query, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLimit, lister.limit)
			if tt.wantCode != http.StatusOK {
				return
			}
			var body struct {
				Count     int                         `json:"count"`
				Snapshots []analytics.AggregatedStats `json:"snapshots"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, 2, body.Count)
			assert.Equal(t, int64(3), body.Snapshots[0].TotalSearches)
		})
	}
}
