package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StatsSource reports the request window.
type StatsSource interface {
	RequestStats() RequestStats
}

type Handler struct {
	source StatsSource
	logger *slog.Logger
}

func NewHandler(source StatsSource) *Handler {
	return &Handler{
		source: source,
		logger: slog.Default().With("component", "analytics-handler"),
	}
}

// Stats answers with the search server's request window.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.source.RequestStats())
}

// AggregateHandler serves totals folded from the analytics topic.
type AggregateHandler struct {
	*Handler
	agg *Aggregator
}

func NewAggregateHandler(agg *Aggregator) *AggregateHandler {
	return &AggregateHandler{
		Handler: &Handler{logger: slog.Default().With("component", "analytics-handler")},
		agg:     agg,
	}
}

func (h *AggregateHandler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.agg.Stats())
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
