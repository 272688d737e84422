// Package snapshot executes point-in-time reads against a network store.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
)

// store is the consumer interface for snapshot reads (ISP).
type store interface {
	Find(ctx context.Context, q *db.FindQuery) ([]db.Record, error)
}

// Metrics holds the optional collectors the executor reports to.
// Expected labels: duration {network, entity, status}, returned {network, entity}.
type Metrics struct {
	Duration *prometheus.HistogramVec
	Returned *prometheus.HistogramVec
}

// Executor runs one store query per call. It never retries.
type Executor struct {
	store   store
	network string
	metrics Metrics
}

// New creates an executor for one network.
func New(s store, network string, m Metrics) *Executor {
	return &Executor{store: s, network: network, metrics: m}
}

// Execute reads the window [skip, skip+limit) of records matching p, ordered
// by key. The current-version restriction is always applied.
func (e *Executor) Execute(
	ctx context.Context, collection string,
	p predicate.Predicate, key order.Key, w request.Window,
) ([]db.Record, error) {
	q := &db.FindQuery{
		Collection: collection,
		Where:      p.WithCurrentVersion(),
		Sort:       key,
		Skip:       w.Skip,
		Limit:      w.Limit,
	}

	start := time.Now()
	recs, err := e.store.Find(ctx, q)
	e.observe(collection, start, len(recs), err)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return recs, nil
}

func (e *Executor) observe(collection string, start time.Time, n int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if e.metrics.Duration != nil {
		e.metrics.Duration.WithLabelValues(e.network, collection, status).Observe(time.Since(start).Seconds())
	}
	if e.metrics.Returned != nil && err == nil {
		e.metrics.Returned.WithLabelValues(e.network, collection).Observe(float64(n))
	}
}
