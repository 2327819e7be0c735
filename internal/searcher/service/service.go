// Package service serializes access to the search engine and layers the
// request window, the query cache, metrics and analytics events on top of
// it. It is the only entry point the HTTP handlers, the Kafka consumer and
// the commands use.
package service

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// Tracker receives analytics events. *analytics.Collector implements it.
type Tracker interface {
	Track(event any)
}

// Removal reasons reported in docs_removed_total.
const (
	ReasonExplicit  = "explicit"
	ReasonDuplicate = "duplicate"
)

// SearchResult is one answered query.
type SearchResult struct {
	Query     string             `json:"query"`
	Status    string             `json:"status,omitempty"`
	Documents []ranker.ScoredDoc `json:"documents"`
	CacheHit  bool               `json:"cache_hit"`
	Took      time.Duration      `json:"took_ns"`
}

// MatchResult is the outcome of matching a query against one document.
type MatchResult struct {
	ID     int          `json:"id"`
	Words  []string     `json:"words"`
	Status index.Status `json:"status"`
}

// Stats is the combined view of the engine, the request window and the cache.
type Stats struct {
	Index      indexer.Stats          `json:"index"`
	Requests   analytics.RequestStats `json:"requests"`
	Generation uint64                 `json:"generation"`
	Cache      *cache.Stats           `json:"cache,omitempty"`
}

type Option func(*Service)

// WithCache enables result caching.
func WithCache(c *cache.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics reports to m instead of a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracker sends analytics events to t.
func WithTracker(t Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithLogger replaces the service logger, which also receives search spans.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRequestWindow sets how many recent requests the no-result count spans.
func WithRequestWindow(window int) Option {
	return func(s *Service) { s.window = window }
}

// Service is safe for concurrent use.
type Service struct {
	mu         sync.Mutex
	engine     *indexer.Engine
	queue      *analytics.RequestQueue
	generation uint64

	window  int
	cache   *cache.QueryCache
	metrics *metrics.Metrics
	tracker Tracker
	logger  *slog.Logger
}

// New wraps engine. The service takes ownership: callers must not use the
// engine directly afterwards.
func New(engine *indexer.Engine, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		window: analytics.MinutesInDay,
		logger: slog.Default().With("component", "search-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	}
	s.queue = analytics.NewRequestQueue(engine, s.window)
	s.updateIndexGauges()
	return s
}

// AddDocument validates doc and indexes it.
func (s *Service) AddDocument(ctx context.Context, doc ingestion.Document) error {
	log := logger.FromContext(ctx)
	if err := validator.ValidateDocument(&doc); err != nil {
		s.metrics.DocsRejectedTotal.Inc()
		log.Warn("document rejected", "doc_id", doc.ID, "error", err)
		return err
	}

	s.mu.Lock()
	err := s.engine.AddDocument(doc.ID, doc.Text, doc.Status, doc.Ratings)
	var terms int
	if err == nil {
		freqs, _ := s.engine.GetWordFrequencies(doc.ID)
		terms = len(freqs)
		s.mutated()
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.DocsRejectedTotal.Inc()
		log.Warn("document rejected", "doc_id", doc.ID, "error", err)
		return err
	}
	s.metrics.DocsIndexedTotal.Inc()
	s.track(analytics.IndexEvent{
		Type:       analytics.EventIndexDoc,
		DocumentID: doc.ID,
		TermCount:  terms,
		Timestamp:  time.Now().UTC(),
	})
	log.Debug("document indexed", "doc_id", doc.ID, "terms", terms, "status", doc.Status)
	return nil
}

// AddDocuments indexes docs in order and returns one error slot per
// document. A failed document never stops the batch.
func (s *Service) AddDocuments(ctx context.Context, docs []ingestion.Document) []error {
	errs := make([]error, len(docs))
	for i, doc := range docs {
		errs[i] = s.AddDocument(ctx, doc)
	}
	return errs
}

// RemoveDocument removes a live document and reports whether it existed.
func (s *Service) RemoveDocument(ctx context.Context, id int) bool {
	s.mu.Lock()
	removed := s.engine.RemoveDocument(id)
	if removed {
		s.mutated()
	}
	s.mu.Unlock()

	if removed {
		s.metrics.DocsRemovedTotal.WithLabelValues(ReasonExplicit).Inc()
		s.trackRemoval(id, ReasonExplicit)
		logger.FromContext(ctx).Info("document removed", "doc_id", id)
	}
	return removed
}

// FindDuplicates reports duplicate documents without removing them.
func (s *Service) FindDuplicates() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dedup.FindDuplicates(s.engine)
}

// RemoveDuplicates removes every document whose vocabulary repeats that of
// a document with a smaller id and returns the removed ids.
func (s *Service) RemoveDuplicates(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	removed, err := dedup.RemoveDuplicates(s.engine)
	if len(removed) > 0 {
		s.mutated()
	}
	s.mu.Unlock()
	if err != nil {
		return removed, err
	}

	log := logger.FromContext(ctx)
	for _, id := range removed {
		log.Info("Found duplicate document id", "doc_id", id)
		s.trackRemoval(id, ReasonDuplicate)
	}
	s.metrics.DocsRemovedTotal.WithLabelValues(ReasonDuplicate).Add(float64(len(removed)))
	return removed, nil
}

// Search answers raw against documents with the given status, through the
// cache when one is configured. Each call is traced as a span tree keyed by
// the request id and logged at debug level.
func (s *Service) Search(ctx context.Context, raw string, status index.Status) (*SearchResult, error) {
	start := time.Now()
	requestID, _ := logger.RequestID(ctx)
	ctx, span := tracing.Start(ctx, "search", requestID)
	span.SetAttr("status", status.String())
	defer func() {
		span.End()
		span.Log(s.logger)
	}()

	cacheStatus := metrics.CacheDisabled
	var docs []ranker.ScoredDoc
	var hit bool
	var err error
	if s.cache == nil {
		docs, err = s.searchDirect(ctx, raw, status)
	} else {
		docs, hit, err = s.searchCached(ctx, raw, status)
		cacheStatus = metrics.CacheMiss
		if hit {
			cacheStatus = metrics.CacheHit
		}
	}
	took := time.Since(start)
	if err != nil {
		span.SetAttr("error", err.Error())
		s.metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		logger.FromContext(ctx).Debug("search rejected", "query", raw, "error", err)
		return nil, err
	}
	span.SetAttr("returned", len(docs))

	s.observeSearch(ctx, raw, status.String(), len(docs), hit, cacheStatus, took)
	return &SearchResult{
		Query:     raw,
		Status:    status.String(),
		Documents: docs,
		CacheHit:  hit,
		Took:      took,
	}, nil
}

// parse reads only the stop words, which never change after construction.
func (s *Service) parse(ctx context.Context, raw string) (*parser.QueryPlan, error) {
	_, span := tracing.StartChild(ctx, "parse")
	defer span.End()
	plan, err := s.engine.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	span.SetAttr("terms", len(plan.Terms))
	span.SetAttr("exclude_terms", len(plan.ExcludeTerms))
	return plan, nil
}

func (s *Service) searchDirect(ctx context.Context, raw string, status index.Status) ([]ranker.ScoredDoc, error) {
	plan, err := s.parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.engine.FindTopDocumentsPlan(ctx, plan, executor.WithStatus(status))
	s.queue.Record(len(docs) == 0)
	return docs, nil
}

func (s *Service) searchCached(ctx context.Context, raw string, status index.Status) ([]ranker.ScoredDoc, bool, error) {
	plan, err := s.parse(ctx, raw)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	cacheCtx, span := tracing.StartChild(ctx, "cache")
	key := s.cache.Key(plan, status.String(), generation)
	docs, hit, err := s.cache.GetOrCompute(cacheCtx, key, func() ([]ranker.ScoredDoc, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.engine.FindTopDocumentsPlan(cacheCtx, plan, executor.WithStatus(status)), nil
	})
	span.SetAttr("hit", hit)
	span.End()
	if err != nil {
		return nil, false, err
	}
	if hit {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}

	s.mu.Lock()
	s.queue.Record(len(docs) == 0)
	s.mu.Unlock()
	return docs, hit, nil
}

// SearchFunc answers raw against documents accepted by pred. Predicate
// searches bypass the cache.
func (s *Service) SearchFunc(ctx context.Context, raw string, pred executor.Predicate) (*SearchResult, error) {
	start := time.Now()
	s.mu.Lock()
	docs, err := s.queue.AddFindRequestFunc(raw, pred)
	s.mu.Unlock()
	took := time.Since(start)
	if err != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	s.observeSearch(ctx, raw, "", len(docs), false, metrics.CacheDisabled, took)
	return &SearchResult{Query: raw, Documents: docs, Took: took}, nil
}

func (s *Service) observeSearch(ctx context.Context, raw, status string, returned int, hit bool, cacheStatus string, took time.Duration) {
	resultType := metrics.ResultHit
	if returned == 0 {
		resultType = metrics.ResultZeroResult
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(took.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(returned))

	s.mu.Lock()
	s.metrics.NoResultRequests.Set(float64(s.queue.NoResultRequests()))
	s.mu.Unlock()

	eventType := analytics.EventSearch
	switch {
	case returned == 0:
		eventType = analytics.EventZeroResult
	case hit:
		eventType = analytics.EventCacheHit
	}
	requestID, _ := logger.RequestID(ctx)
	s.track(analytics.SearchEvent{
		Type:      eventType,
		Query:     raw,
		Status:    status,
		Returned:  returned,
		NoResult:  returned == 0,
		CacheHit:  hit,
		LatencyMs: took.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	})
}

// Match returns the plus words of raw found in document id.
func (s *Service) Match(raw string, id int) (MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	words, status, err := s.engine.MatchDocument(raw, id)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchResult{ID: id, Words: words, Status: status}, nil
}

// MatchAll matches raw against every live document in insertion order.
func (s *Service) MatchAll(raw string) ([]MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.engine.DocumentIDs()
	results := make([]MatchResult, 0, len(ids))
	for _, id := range ids {
		words, status, err := s.engine.MatchDocument(raw, id)
		if err != nil {
			return nil, err
		}
		results = append(results, MatchResult{ID: id, Words: words, Status: status})
	}
	return results, nil
}

// Frequencies returns a copy of the term frequencies of document id.
func (s *Service) Frequencies(id int) (index.WordFrequencies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	freqs, err := s.engine.GetWordFrequencies(id)
	if err != nil {
		return nil, err
	}
	return maps.Clone(freqs), nil
}

// Document returns the metadata of a live document.
func (s *Service) Document(id int) (index.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Document(id)
}

// DocumentIDs returns the live ids in insertion order.
func (s *Service) DocumentIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DocumentIDs()
}

func (s *Service) RequestStats() analytics.RequestStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Stats()
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	stats := Stats{
		Index:      s.engine.Stats(),
		Requests:   s.queue.Stats(),
		Generation: s.generation,
	}
	s.mu.Unlock()
	if s.cache != nil {
		cs := s.cache.Stats()
		stats.Cache = &cs
	}
	return stats
}

// CacheEnabled reports whether searches go through a cache.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// InvalidateCache drops every cached result. Without a cache it is a no-op.
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Invalidate(ctx)
}

// mutated bumps the generation, which retires every cached result, and
// refreshes the index gauges. Callers hold s.mu.
func (s *Service) mutated() {
	s.generation++
	s.updateIndexGauges()
}

func (s *Service) updateIndexGauges() {
	stats := s.engine.Stats()
	s.metrics.IndexDocuments.Set(float64(stats.Documents))
	s.metrics.IndexTerms.Set(float64(stats.Terms))
}

func (s *Service) trackRemoval(id int, reason string) {
	s.track(analytics.IndexEvent{
		Type:       analytics.EventRemoveDoc,
		DocumentID: id,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	})
}

func (s *Service) track(event any) {
	if s.tracker != nil {
		s.tracker.Track(event)
	}
}
