package analytics

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

type AggregatedStats struct {
	TotalSearches     int64            `json:"total_searches"`
	TotalDocIndexed   int64            `json:"total_docs_indexed"`
	TotalDocRemoved   int64            `json:"total_docs_removed"`
	RemovedByReason   map[string]int64 `json:"removed_by_reason"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// maxLatencySamples bounds the latency reservoir; older samples are dropped.
const maxLatencySamples = 10000

// Aggregator folds search and index events from the analytics topic into
// running totals.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	totalDocIndexed   int64
	removedByReason   map[string]int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	restoredSearches  int64
	startTime         time.Time
	now               func() time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		removedByReason:   make(map[string]int64),
		startTime:         time.Now(),
		now:               time.Now,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleMessage is the kafka.MessageHandler for the analytics topic.
// Undecodable and unknown events are logged and skipped.
func (a *Aggregator) HandleMessage() kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		var envelope struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(value, &envelope); err != nil {
			a.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch envelope.Type {
		case EventSearch, EventCacheHit, EventZeroResult:
			event, err := kafka.DecodeJSON[SearchEvent](value)
			if err != nil {
				a.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			a.RecordSearch(event)
		case EventIndexDoc, EventRemoveDoc:
			event, err := kafka.DecodeJSON[IndexEvent](value)
			if err != nil {
				a.logger.Error("failed to decode index event", "error", err)
				return nil
			}
			a.RecordIndex(event)
		default:
			a.logger.Warn("unknown analytics event type", "type", envelope.Type)
		}
		return nil
	}
}

func (a *Aggregator) RecordSearch(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if event.NoResult {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	if len(a.latencies) == maxLatencySamples {
		a.latencies = append(a.latencies[:0], a.latencies[1:]...)
	}
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
}

func (a *Aggregator) RecordIndex(event IndexEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch event.Type {
	case EventIndexDoc:
		a.totalDocIndexed++
	case EventRemoveDoc:
		reason := event.Reason
		if reason == "" {
			reason = "unknown"
		}
		a.removedByReason[reason]++
	}
}

// Restore seeds the totals from a saved snapshot. Latency samples are not
// restored, and query counts only for the queries the snapshot listed.
func (a *Aggregator) Restore(snap AggregatedStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches += snap.TotalSearches
	a.restoredSearches += snap.TotalSearches
	a.totalDocIndexed += snap.TotalDocIndexed
	a.cacheHits += snap.CacheHits
	a.cacheMisses += snap.CacheMisses
	a.zeroResults += snap.ZeroResultCount
	for reason, n := range snap.RemovedByReason {
		a.removedByReason[reason] += n
	}
	for _, qc := range snap.TopQueries {
		a.queryCounts[qc.Query] += qc.Count
	}
	for _, qc := range snap.ZeroResultQueries {
		a.zeroResultQueries[qc.Query] += qc.Count
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		TotalDocIndexed: a.totalDocIndexed,
		RemovedByReason: make(map[string]int64, len(a.removedByReason)),
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		ZeroResultCount: a.zeroResults,
	}
	for reason, n := range a.removedByReason {
		stats.RemovedByReason[reason] = n
		stats.TotalDocRemoved += n
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches-a.restoredSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then query ascending.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(a, b QueryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
