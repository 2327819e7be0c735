package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	lat := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(lat, 50))
	assert.Equal(t, time.Duration(10), percentile(lat, 99))
	assert.Equal(t, time.Duration(1), percentile(lat, 0))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestSearchURL(t *testing.T) {
	u, err := url.Parse(searchURL("http://localhost:8080/", "funny pet -rat", "BANNED"))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/search", u.Path)
	assert.Equal(t, "funny pet -rat", u.Query().Get("q"))
	assert.Equal(t, "BANNED", u.Query().Get("status"))
}

func TestDoSearchRecordsCacheHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad --query" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"documents": []map[string]int{{"id": 1}},
			"cache_hit": r.URL.Query().Get("q") == "cached",
		})
	}))
	defer srv.Close()

	stats := NewStats()
	ctx := t.Context()
	doSearch(ctx, srv.Client(), stats, searchURL(srv.URL, "cached", "ACTUAL"))
	doSearch(ctx, srv.Client(), stats, searchURL(srv.URL, "fresh", "ACTUAL"))
	doSearch(ctx, srv.Client(), stats, searchURL(srv.URL, "bad --query", "ACTUAL"))

	assert.Equal(t, int64(3), stats.totalRequests.Load())
	assert.Equal(t, int64(2), stats.successCount.Load())
	assert.Equal(t, int64(1), stats.errorCount.Load())
	assert.Equal(t, int64(1), stats.cacheHits.Load())
	assert.Equal(t, int64(0), stats.emptyResults.Load())

	var out bytes.Buffer
	assert.True(t, printReport(&out, stats, time.Second))
	assert.Contains(t, out.String(), "Cache Hit Rate:  50.00%")
	assert.Contains(t, out.String(), "  400: 1")
}

func TestPrintReportEmpty(t *testing.T) {
	var out bytes.Buffer
	assert.False(t, printReport(&out, NewStats(), time.Second))
	assert.Contains(t, out.String(), "No requests completed")
}
