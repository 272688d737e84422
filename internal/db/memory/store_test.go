package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
)

func felt(v uint64) []byte { return codec.FeltFromUint64(v) }

func rec(id, xp uint64, validTo []byte) db.Record {
	return db.Record{
		"id":                    felt(id),
		"xp":                    felt(xp),
		"name":                  []byte("hero"),
		predicate.ValidFromPath: felt(id),
		predicate.ValidToPath:   validTo,
	}
}

func find(t *testing.T, s *Store, p predicate.Predicate, key order.Key, skip, limit int) []db.Record {
	t.Helper()
	recs, err := s.Find(context.Background(), &db.FindQuery{
		Collection: "adventurers",
		Where:      p,
		Sort:       key,
		Skip:       skip,
		Limit:      limit,
	})
	require.NoError(t, err)
	return recs
}

func ids(recs []db.Record) []uint64 {
	out := make([]uint64, len(recs))
	for i, r := range recs {
		out[i] = codec.DecodeFelt(r["id"].([]byte)).Uint64()
	}
	return out
}

func TestFind_SortAndWindow(t *testing.T) {
	s := NewStore()
	for i := uint64(1); i <= 5; i++ {
		s.Insert("adventurers", rec(i, 10*i, nil))
	}
	asc := order.Key{Path: "xp", Direction: order.Ascending}
	p := predicate.New().WithCurrentVersion()

	assert.Equal(t, []uint64{2, 3}, ids(find(t, s, p, asc, 1, 2)))
	assert.Equal(t, []uint64{5}, ids(find(t, s, p, asc, 4, 10)))
	assert.Empty(t, find(t, s, p, asc, 5, 10))

	desc := order.Key{Path: "xp", Direction: order.Descending}
	assert.Equal(t, []uint64{5, 4, 3}, ids(find(t, s, p, desc, 0, 3)))
}

func TestFind_CurrentVersionOnly(t *testing.T) {
	s := NewStore()
	s.Insert("adventurers", rec(1, 10, nil), rec(2, 20, nil))
	n := s.Invalidate("adventurers", "id", felt(1), felt(99))
	require.Equal(t, 1, n)
	s.Insert("adventurers", rec(1, 15, nil))

	p := predicate.New().WithCurrentVersion()
	recs := find(t, s, p, order.Key{Path: "xp", Direction: order.Ascending}, 0, 10)
	require.Len(t, recs, 2)
	assert.Equal(t, felt(15), recs[0]["xp"])
	for _, r := range recs {
		assert.Nil(t, r[predicate.ValidToPath])
	}
}

func TestMatches_Operators(t *testing.T) {
	r := db.Record{
		"xp":        felt(50),
		"name":      []byte("meatloaf"),
		"timestamp": time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		"gold":      nil,
	}

	field := func(op predicate.Op, o predicate.Operand) predicate.Field {
		var f predicate.Field
		f.Set(op, o)
		return f
	}
	scalar := func(b []byte) predicate.Operand { return predicate.Scalar(predicate.Bytes(b)) }
	list := func(bs ...[]byte) predicate.Operand {
		vs := make([]predicate.Value, len(bs))
		for i, b := range bs {
			vs[i] = predicate.Bytes(b)
		}
		return predicate.List(vs)
	}

	tests := []struct {
		name string
		path string
		f    predicate.Field
		want bool
	}{
		{"eq", "xp", predicate.Equal(predicate.Bytes(felt(50))), true},
		{"eq miss", "xp", predicate.Equal(predicate.Bytes(felt(51))), false},
		{"eq null on nil", "gold", predicate.Equal(predicate.Null()), true},
		{"eq null on missing", "absent", predicate.Equal(predicate.Null()), true},
		{"gte", "xp", field(predicate.Gte, scalar(felt(50))), true},
		{"gt", "xp", field(predicate.Gt, scalar(felt(50))), false},
		{"lt", "xp", field(predicate.Lt, scalar(felt(51))), true},
		{"range on null", "gold", field(predicate.Gte, scalar(felt(0))), false},
		{"in", "xp", field(predicate.In, list(felt(1), felt(50))), true},
		{"nin", "xp", field(predicate.NotIn, list(felt(1), felt(50))), false},
		{"nin on null", "gold", field(predicate.NotIn, list(felt(1))), true},
		{"ends with", "name", field(predicate.Regex, predicate.Match(predicate.Pattern{Anchor: predicate.AtEnd, Literal: []byte("loaf")})), true},
		{"starts with", "name", field(predicate.Regex, predicate.Match(predicate.Pattern{Anchor: predicate.AtStart, Literal: []byte("loaf")})), false},
		{"date lt", "timestamp", field(predicate.Lt, predicate.Scalar(predicate.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))), true},
		{"date vs bytes", "timestamp", field(predicate.Lt, scalar(felt(1))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := predicate.New()
			p.Set(tt.path, tt.f)
			assert.Equal(t, tt.want, Matches(p, r))
		})
	}
}

func TestFind_UnknownCollectionIsEmpty(t *testing.T) {
	s := NewStore()
	recs, err := s.Find(context.Background(), &db.FindQuery{Collection: "items", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestInsert_Copies(t *testing.T) {
	s := NewStore()
	r := rec(1, 10, nil)
	s.Insert("adventurers", r)
	r["xp"] = felt(99)

	recs := find(t, s, predicate.New(), order.Key{Path: "xp"}, 0, 10)
	require.Len(t, recs, 1)
	assert.Equal(t, felt(10), recs[0]["xp"])
}

func TestMatches_NilBytesMarkerIsCurrent(t *testing.T) {
	r := db.Record{"id": felt(1), predicate.ValidToPath: []byte(nil)}
	assert.True(t, Matches(predicate.New().WithCurrentVersion(), r))

	r[predicate.ValidToPath] = felt(5)
	assert.False(t, Matches(predicate.New().WithCurrentVersion(), r))
}

func TestInvalidate_NilBytesMarker(t *testing.T) {
	s := NewStore()
	s.Insert("adventurers", db.Record{
		"id":                    felt(1),
		"xp":                    felt(10),
		predicate.ValidFromPath: felt(1),
		predicate.ValidToPath:   []byte(nil),
	})
	p := predicate.New().WithCurrentVersion()
	key := order.Key{Path: "xp", Direction: order.Ascending}
	require.Len(t, find(t, s, p, key, 0, 10), 1)

	assert.Equal(t, 1, s.Invalidate("adventurers", "id", felt(1), felt(2)))
	assert.Empty(t, find(t, s, p, key, 0, 10))
}

func TestFind_NullSortsLowest(t *testing.T) {
	s := NewStore()
	noXP := rec(3, 0, nil)
	delete(noXP, "xp")
	s.Insert("adventurers", rec(1, 10, nil), noXP, rec(2, 20, nil))
	p := predicate.New().WithCurrentVersion()

	asc := order.Key{Path: "xp", Direction: order.Ascending}
	assert.Equal(t, []uint64{3, 1, 2}, ids(find(t, s, p, asc, 0, 10)))

	desc := order.Key{Path: "xp", Direction: order.Descending}
	assert.Equal(t, []uint64{2, 1, 3}, ids(find(t, s, p, desc, 0, 10)))
}
