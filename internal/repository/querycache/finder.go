// Package querycache is a read-through cache of snapshot query pages.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/db"
)

const keyPrefix = "survivor:query:"

// finder is the decorated store.
type finder interface {
	Find(ctx context.Context, q *db.FindQuery) ([]db.Record, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFinder caches find results for a bounded TTL. Cache failures are
// logged and fall through to the inner finder.
type CachedFinder struct {
	inner      finder
	store      store
	network    string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner finder,
	s store,
	network string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFinder {
	return &CachedFinder{
		inner:      inner,
		store:      s,
		network:    network,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Find returns a cached page or reads through to the inner finder.
func (c *CachedFinder) Find(ctx context.Context, q *db.FindQuery) ([]db.Record, error) {
	key := c.cacheKey(q)

	if recs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return recs, nil
	}

	c.incCache("miss")

	recs, err := c.inner.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.Collection, err)
	}

	c.putToCache(ctx, key, recs)
	return recs, nil
}

func (c *CachedFinder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the normalized query. Predicate.String is canonical, so
// equal queries share a key.
func (c *CachedFinder) cacheKey(q *db.FindQuery) string {
	h := sha256.New()
	for _, part := range []string{
		q.Collection,
		q.Where.String(),
		q.Sort.Path,
		q.Sort.Direction.String(),
		strconv.Itoa(q.Skip),
		strconv.Itoa(q.Limit),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + c.network + ":" + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedFinder) getFromCache(ctx context.Context, key string) ([]db.Record, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached query", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	recs, err := decodeRecords(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached query", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return recs, true
}

func (c *CachedFinder) putToCache(ctx context.Context, key string, recs []db.Record) {
	data, err := encodeRecords(recs)
	if err != nil {
		c.logger.Warn("Failed to encode query page", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache query", zap.String("key", key), zap.Error(err))
	}
}
