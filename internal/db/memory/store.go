// Package memory implements the entity store in process memory. It backs the
// local driver and executor tests, and evaluates predicates with the same
// semantics as the SQL store.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps versioned records per collection.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]db.Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]db.Record)}
}

// Insert appends records to a collection. Records are copied.
func (s *Store) Insert(collection string, recs ...db.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.collections[collection] = append(s.collections[collection], clone(r))
	}
}

// Invalidate sets the invalidation marker on every current version in
// collection whose field key equals value, and returns how many changed.
func (s *Store) Invalidate(collection, key string, value, at []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.collections[collection] {
		if !isNull(r[predicate.ValidToPath]) {
			continue
		}
		if b, ok := r[key].([]byte); ok && bytes.Equal(b, value) {
			r[predicate.ValidToPath] = normalize(at)
			n++
		}
	}
	return n
}

// Find evaluates q over the collection.
func (s *Store) Find(_ context.Context, q *db.FindQuery) ([]db.Record, error) {
	s.mu.RLock()
	var matched []db.Record
	for _, r := range s.collections[q.Collection] {
		if Matches(q.Where, r) {
			matched = append(matched, clone(r))
		}
	}
	s.mu.RUnlock()

	sortRecords(matched, q.Sort)

	if q.Skip >= len(matched) {
		return nil, nil
	}
	end := len(matched)
	if q.Limit >= 0 && q.Skip+q.Limit < end {
		end = q.Skip + q.Limit
	}
	return matched[q.Skip:end], nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

func clone(r db.Record) db.Record {
	out := make(db.Record, len(r))
	for k, v := range r {
		out[k] = normalize(v)
	}
	return out
}

// normalize stores a nil byte slice as an untyped null.
func normalize(v any) any {
	if isNull(v) {
		return nil
	}
	return v
}

// sortRecords orders null lowest: first ascending, last descending.
func sortRecords(recs []db.Record, key order.Key) {
	sort.SliceStable(recs, func(i, j int) bool {
		c := compare(recs[i][key.Path], recs[j][key.Path])
		if key.Direction == order.Ascending {
			return c < 0
		}
		return c > 0
	})
}
