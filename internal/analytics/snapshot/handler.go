package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Lister is what ListHandler reads from; *Store implements it.
type Lister interface {
	List(ctx context.Context, limit int) ([]analytics.AggregatedStats, error)
}

// ListHandler serves the newest snapshots. The optional limit query
// parameter is clamped to [1, 100].
func ListHandler(lister Lister) http.HandlerFunc {
	logger := slog.Default().With("component", "analytics-snapshots")
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
				return
			}
			limit = min(max(n, 1), maxListLimit)
		}
		snapshots, err := lister.List(r.Context(), limit)
		if err != nil {
			logger.Error("listing snapshots failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"snapshots": snapshots,
			"count":     len(snapshots),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
