// Package cache stores ranked search results in Redis keyed by the
// normalized query, the status filter and the index generation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Store is the key-value backend. *redis.Client from pkg/redis implements it.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	BreakerState string `json:"breaker_state"`
}

// QueryCache is safe for concurrent use. Backend failures are logged and
// treated as misses; they never fail a search.
type QueryCache struct {
	store     Store
	ttl       time.Duration
	namespace string
	breaker   *resilience.CircuitBreaker
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New creates a cache over store. Keys are namespaced per instance so a
// restarted process never reads results computed over an earlier corpus.
func New(store Store, ttl time.Duration, breaker *resilience.CircuitBreaker) *QueryCache {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{})
	}
	return &QueryCache{
		store:     store,
		ttl:       ttl,
		namespace: uuid.NewString()[:8],
		breaker:   breaker,
		logger:    slog.Default().With("component", "query-cache"),
	}
}

// Key derives the cache key of a parsed query. Word order and repetition in
// the raw query do not affect it; generation must change whenever the index
// does.
func (c *QueryCache) Key(plan *parser.QueryPlan, status string, generation uint64) string {
	raw := fmt.Sprintf("%s|-%s|status=%s|gen=%d",
		strings.Join(plan.Terms, "\x00"),
		strings.Join(plan.ExcludeTerms, "\x00"),
		status,
		generation,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.namespace, hash[:16])
}

// Get returns the cached documents for key.
func (c *QueryCache) Get(ctx context.Context, key string) ([]ranker.ScoredDoc, bool) {
	var data string
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var docs []ranker.ScoredDoc
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return docs, true
}

// Set stores docs under key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, key string, docs []ranker.ScoredDoc) {
	if docs == nil {
		docs = []ranker.ScoredDoc{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, string(data), c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached documents for key or runs compute once
// for all concurrent callers missing the same key and caches its result.
// hit reports whether the documents came from the store.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	key string,
	compute func() ([]ranker.ScoredDoc, error),
) (docs []ranker.ScoredDoc, hit bool, err error) {
	if docs, ok := c.Get(ctx, key); ok {
		return docs, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		docs, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]ranker.ScoredDoc), false, nil
}

// Invalidate deletes the result keys of this instance's namespace. Keys left
// by other processes sharing the store are theirs and expire with the TTL.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	var deleted int64
	err := c.breaker.Execute(func() error {
		var err error
		deleted, err = c.store.FlushByPattern(ctx, keyPrefix+c.namespace+":*")
		return err
	})
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "namespace", c.namespace, "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		BreakerState: c.breaker.State().String(),
	}
}
