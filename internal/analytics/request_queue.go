package analytics

import (
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// MinutesInDay is the default request window: one request per minute over a
// day.
const MinutesInDay = 1440

// Searcher is the query surface a RequestQueue wraps.
type Searcher interface {
	FindTopDocuments(rawQuery string) ([]ranker.ScoredDoc, error)
	FindTopDocumentsWithStatus(rawQuery string, status index.Status) ([]ranker.ScoredDoc, error)
	FindTopDocumentsFunc(rawQuery string, pred executor.Predicate) ([]ranker.ScoredDoc, error)
}

type requestRecord struct {
	tick     uint64
	noResult bool
}

// RequestStats summarizes the requests currently inside the window.
type RequestStats struct {
	Window           int    `json:"window"`
	Requests         int    `json:"requests"`
	NoResultRequests int    `json:"no_result_requests"`
	TotalRequests    uint64 `json:"total_requests"`
}

// RequestQueue forwards queries to a Searcher and remembers, for the most
// recent window requests, which ones returned nothing. Every request
// advances the clock by one tick. It is not safe for concurrent use.
type RequestQueue struct {
	searcher  Searcher
	window    int
	records   []requestRecord
	noResults int
	tick      uint64
}

// NewRequestQueue wraps searcher. A non-positive window falls back to
// MinutesInDay.
func NewRequestQueue(searcher Searcher, window int) *RequestQueue {
	if window <= 0 {
		window = MinutesInDay
	}
	return &RequestQueue{
		searcher: searcher,
		window:   window,
		records:  make([]requestRecord, 0, window),
	}
}

func (q *RequestQueue) AddFindRequest(rawQuery string) ([]ranker.ScoredDoc, error) {
	return q.record(q.searcher.FindTopDocuments(rawQuery))
}

func (q *RequestQueue) AddFindRequestWithStatus(rawQuery string, status index.Status) ([]ranker.ScoredDoc, error) {
	return q.record(q.searcher.FindTopDocumentsWithStatus(rawQuery, status))
}

func (q *RequestQueue) AddFindRequestFunc(rawQuery string, pred executor.Predicate) ([]ranker.ScoredDoc, error) {
	return q.record(q.searcher.FindTopDocumentsFunc(rawQuery, pred))
}

// Record logs a request answered elsewhere, such as from a cache.
func (q *RequestQueue) Record(noResult bool) {
	q.tick++
	for len(q.records) > 0 && q.tick-q.records[0].tick >= uint64(q.window) {
		if q.records[0].noResult {
			q.noResults--
		}
		q.records = q.records[1:]
	}
	q.records = append(q.records, requestRecord{tick: q.tick, noResult: noResult})
	if noResult {
		q.noResults++
	}
}

// NoResultRequests returns how many requests in the window found nothing.
func (q *RequestQueue) NoResultRequests() int {
	return q.noResults
}

func (q *RequestQueue) Stats() RequestStats {
	return RequestStats{
		Window:           q.window,
		Requests:         len(q.records),
		NoResultRequests: q.noResults,
		TotalRequests:    q.tick,
	}
}

// record keeps failed requests out of the window.
func (q *RequestQueue) record(docs []ranker.ScoredDoc, err error) ([]ranker.ScoredDoc, error) {
	if err != nil {
		return nil, err
	}
	q.Record(len(docs) == 0)
	return docs, nil
}
