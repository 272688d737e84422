package db

import (
	"context"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
)

// Store is a read-only entity store for one network.
type Store interface {
	Pinger
	Finder
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Record is a raw stored record keyed by dotted field path.
// Values are []byte, time.Time or nil.
type Record = map[string]any

// FindQuery is a single snapshot read: predicate, one sort key and an offset
// window over one collection.
type FindQuery struct {
	Collection string
	Where      predicate.Predicate
	Sort       order.Key
	Skip       int
	Limit      int
}

// Finder executes find queries.
type Finder interface {
	Find(ctx context.Context, q *FindQuery) ([]Record, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// WaitForReady polls p until it responds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := p.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return &Error{Op: OpPing, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
