package query

import (
	"context"
	"testing"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

type mockExecutor struct {
	executeFn func(ctx context.Context, collection string, p predicate.Predicate, key order.Key, w request.Window) ([]db.Record, error)
}

func (m *mockExecutor) Execute(
	ctx context.Context, collection string,
	p predicate.Predicate, key order.Key, w request.Window,
) ([]db.Record, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, collection, p, key, w)
	}
	return nil, nil
}

var scoreTime = time.Date(2023, 8, 2, 9, 30, 0, 0, time.UTC)

func scoreRecord(adventurerID, xp uint64) db.Record {
	return db.Record{
		"adventurerId":          codec.FeltFromUint64(adventurerID),
		"address":               []byte{0x0a, 0xbc},
		"rank":                  codec.FeltFromUint64(1),
		"xp":                    codec.FeltFromUint64(xp),
		"txHash":                []byte{0xfe},
		"scoreTime":             scoreTime,
		"timestamp":             scoreTime,
		predicate.ValidFromPath: codec.FeltFromUint64(100 + adventurerID),
		predicate.ValidToPath:   nil,
	}
}

func newTestService(t *testing.T, exec Executor) *Service {
	t.Helper()
	return New("mainnet", codec.New(vocab.MustDefault()), exec, nil)
}
