package query

import (
	"context"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
)

// Executor runs a compiled snapshot query against one network's store.
type Executor interface {
	Execute(
		ctx context.Context, collection string,
		p predicate.Predicate, key order.Key, w request.Window,
	) ([]db.Record, error)
}
