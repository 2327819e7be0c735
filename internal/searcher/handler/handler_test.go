package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine, err := indexer.NewEngineFromText("and in on")
	require.NoError(t, err)
	svc := service.New(engine)
	docs := []ingestion.Document{
		{ID: 0, Text: "white cat and fashionable collar", Ratings: []int{8, -3}},
		{ID: 1, Text: "fluffy cat fluffy tail", Ratings: []int{7, 2, 7}},
		{ID: 2, Text: "groomed dog expressive eyes", Ratings: []int{5, -12, 2, 1}},
		{ID: 3, Text: "groomed starling evgeny", Status: index.StatusBanned, Ratings: []int{9}},
		{ID: 4, Text: "tail fluffy cat", Ratings: []int{1}},
	}
	for _, err := range svc.AddDocuments(context.Background(), docs) {
		require.NoError(t, err)
	}
	mux := http.NewServeMux()
	New(svc, 2).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func resultIDs(t *testing.T, docs any) []int {
	t.Helper()
	list, ok := docs.([]any)
	require.True(t, ok)
	out := make([]int, 0, len(list))
	for _, d := range list {
		out = append(out, int(d.(map[string]any)["id"].(float64)))
	}
	return out
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodGet, "/api/v1/search?q=fluffy+groomed+cat", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []int{1, 4, 2, 0}, resultIDs(t, body["documents"]))

	code, body = do(t, srv, http.MethodGet, "/api/v1/search?q=groomed&status=banned", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []int{3}, resultIDs(t, body["documents"]))

	code, _ = do(t, srv, http.MethodGet, "/api/v1/search?q=groomed&status=LOST", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, srv, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, body = do(t, srv, http.MethodGet, "/api/v1/search?q=cat+--collar", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "invalid argument")

	code, body = do(t, srv, http.MethodGet, "/api/v1/search?q=", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["documents"])
}

func TestSearchPagesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/api/v1/search/pages?q=fluffy+groomed+cat", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total_pages"])
	pages := body["pages"].([]any)
	require.Len(t, pages, 2)
	assert.Equal(t, []int{1, 4}, resultIDs(t, pages[0].(map[string]any)["items"]))
	assert.Equal(t, []int{2, 0}, resultIDs(t, pages[1].(map[string]any)["items"]))

	code, _ = do(t, srv, http.MethodGet, "/api/v1/search/pages?q=cat&size=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMatchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/api/v1/match?q=fluffy+cat+-collar&id=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"cat", "fluffy"}, body["words"])
	assert.Equal(t, "ACTUAL", body["status"])

	code, _ = do(t, srv, http.MethodGet, "/api/v1/match?q=cat&id=99", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, srv, http.MethodGet, "/api/v1/match?q=groomed", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["matches"], 5)
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	code, _ := do(t, srv, http.MethodPost, "/api/v1/documents", `{"id":10,"text":"curly dog","status":"IRRELEVANT","ratings":[3,4]}`)
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, srv, http.MethodGet, "/api/v1/documents/10", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "IRRELEVANT", body["status"])
	assert.Equal(t, float64(3), body["rating"])

	code, body = do(t, srv, http.MethodGet, "/api/v1/documents/10/frequencies", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"curly": 0.5, "dog": 0.5}, body["frequencies"])

	code, _ = do(t, srv, http.MethodPost, "/api/v1/documents", `{"id":10,"text":"again"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, srv, http.MethodPost, "/api/v1/documents", `{"id":11,"text":"x","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodDelete, "/api/v1/documents/10", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, srv, http.MethodDelete, "/api/v1/documents/10", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, srv, http.MethodGet, "/api/v1/documents/abc/frequencies", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDuplicatesEndpoints(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/api/v1/duplicates", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{float64(4)}, body["duplicates"])

	code, body = do(t, srv, http.MethodPost, "/api/v1/duplicates/remove", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{float64(4)}, body["removed"])

	code, body = do(t, srv, http.MethodPost, "/api/v1/duplicates/remove", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["removed"])
}

func TestStatsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodGet, "/api/v1/search?q=sparrow", "")

	code, body := do(t, srv, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["index"].(map[string]any)["documents"])

	code, body = do(t, srv, http.MethodGet, "/api/v1/analytics", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["no_result_requests"])

	code, body = do(t, srv, http.MethodGet, "/api/v1/cache/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disabled", body["status"])

	code, _ = do(t, srv, http.MethodPost, "/api/v1/cache/invalidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
