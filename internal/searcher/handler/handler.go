// Package handler exposes the search service over HTTP/JSON.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

const maxBodyBytes = 2 << 20

// SearchService is the part of *service.Service the handlers call.
type SearchService interface {
	AddDocument(ctx context.Context, doc ingestion.Document) error
	RemoveDocument(ctx context.Context, id int) bool
	FindDuplicates() ([]int, error)
	RemoveDuplicates(ctx context.Context) ([]int, error)
	Search(ctx context.Context, raw string, status index.Status) (*service.SearchResult, error)
	Match(raw string, id int) (service.MatchResult, error)
	MatchAll(raw string) ([]service.MatchResult, error)
	Frequencies(id int) (index.WordFrequencies, error)
	Document(id int) (index.Document, error)
	Stats() service.Stats
	RequestStats() analytics.RequestStats
	CacheEnabled() bool
	InvalidateCache(ctx context.Context) (int64, error)
}

type Handler struct {
	svc      SearchService
	pageSize int
	logger   *slog.Logger
}

func New(svc SearchService, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = 2
	}
	return &Handler{
		svc:      svc,
		pageSize: pageSize,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/search/pages", h.SearchPages)
	mux.HandleFunc("GET /api/v1/match", h.Match)
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.GetDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/frequencies", h.Frequencies)
	mux.HandleFunc("GET /api/v1/duplicates", h.FindDuplicates)
	mux.HandleFunc("POST /api/v1/duplicates/remove", h.RemoveDuplicates)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(h.svc).Stats)
}

// Search answers GET /api/v1/search?q=&status=. status defaults to ACTUAL.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	result, ok := h.search(w, r)
	if !ok {
		return
	}
	logger.FromContext(r.Context()).Info("search completed",
		"query", result.Query,
		"returned", len(result.Documents),
		"cache_hit", result.CacheHit,
		"took", result.Took,
	)
	h.writeJSON(w, http.StatusOK, result)
}

type pagesResponse struct {
	Query      string                             `json:"query"`
	PageSize   int                                `json:"page_size"`
	TotalPages int                                `json:"total_pages"`
	Pages      []paginator.Page[ranker.ScoredDoc] `json:"pages"`
}

// SearchPages answers GET /api/v1/search/pages?q=&status=&size= with the
// ranked documents split into pages.
func (h *Handler) SearchPages(w http.ResponseWriter, r *http.Request) {
	size := h.pageSize
	if s := r.URL.Query().Get("size"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "size must be a positive integer")
			return
		}
		size = parsed
	}
	result, ok := h.search(w, r)
	if !ok {
		return
	}
	pages := paginator.Paginate(result.Documents, size)
	if pages == nil {
		pages = []paginator.Page[ranker.ScoredDoc]{}
	}
	h.writeJSON(w, http.StatusOK, pagesResponse{
		Query:      result.Query,
		PageSize:   size,
		TotalPages: paginator.Count(len(result.Documents), size),
		Pages:      pages,
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) (*service.SearchResult, bool) {
	q := r.URL.Query()
	if !q.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return nil, false
	}
	status := index.StatusActual
	if s := q.Get("status"); s != "" {
		parsed, err := index.ParseStatus(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		status = parsed
	}
	result, err := h.svc.Search(r.Context(), q.Get("q"), status)
	if err != nil {
		h.writeAppError(w, r, err)
		return nil, false
	}
	return result, true
}

// Match answers GET /api/v1/match?q=&id=. Without id every live document
// is matched.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("q")
	if q.Get("id") == "" {
		results, err := h.svc.MatchAll(raw)
		if err != nil {
			h.writeAppError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"query": raw, "matches": results})
		return
	}
	id, err := strconv.Atoi(q.Get("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	result, err := h.svc.Match(raw, id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var doc ingestion.Document
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid document: %v", err))
		return
	}
	if err := h.svc.AddDocument(r.Context(), doc); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": doc.ID, "status": "indexed"})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Document(id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// RemoveDocument answers DELETE /api/v1/documents/{id}: 204 when removed,
// 404 when the id is not live.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if !h.svc.RemoveDocument(r.Context(), id) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("document %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Frequencies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	freqs, err := h.svc.Frequencies(id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "frequencies": freqs})
}

func (h *Handler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.FindDuplicates()
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"duplicates": nonNil(ids)})
}

func (h *Handler) RemoveDuplicates(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.RemoveDuplicates(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"removed": nonNil(ids)})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.Stats()
	if stats.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	total := stats.Cache.Hits + stats.Cache.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Cache.Hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":          stats.Cache.Hits,
		"misses":        stats.Cache.Misses,
		"total":         total,
		"hit_rate":      fmt.Sprintf("%.1f%%", hitRate),
		"breaker_state": stats.Cache.BreakerState,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CacheEnabled() {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.svc.InvalidateCache(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "document id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
