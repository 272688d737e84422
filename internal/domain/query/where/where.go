// Package where holds the typed filter inputs and compiles them into a
// normalized predicate.
package where

import (
	"math/big"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Filter is a per-field filter tagged by the scalar kind of its field.
// The implementations are *StringFilter, *SymbolFilter, *FeltFilter,
// *HexFilter, *DateFilter and *BoolFilter.
type Filter interface {
	Kind() codec.Kind
}

// StringFilter filters UTF-8 string fields.
type StringFilter struct {
	Eq         *string
	In         []string
	NotIn      []string
	Lt         *string
	Lte        *string
	Gt         *string
	Gte        *string
	Contains   *string
	StartsWith *string
	EndsWith   *string
}

// Kind implements Filter.
func (*StringFilter) Kind() codec.Kind { return codec.String }

// SymbolFilter filters vocabulary fields by symbolic name.
type SymbolFilter struct {
	Vocab      vocab.Name
	Eq         *string
	In         []string
	NotIn      []string
	Lt         *string
	Lte        *string
	Gt         *string
	Gte        *string
	Contains   *string
	StartsWith *string
	EndsWith   *string
}

// Kind implements Filter.
func (*SymbolFilter) Kind() codec.Kind { return codec.Symbol }

// FeltFilter filters felt fields.
type FeltFilter struct {
	Eq    *big.Int
	In    []*big.Int
	NotIn []*big.Int
	Lt    *big.Int
	Lte   *big.Int
	Gt    *big.Int
	Gte   *big.Int
}

// Kind implements Filter.
func (*FeltFilter) Kind() codec.Kind { return codec.Felt }

// HexFilter filters hex fields (addresses, hashes).
type HexFilter struct {
	Eq    *string
	In    []string
	NotIn []string
	Lt    *string
	Lte   *string
	Gt    *string
	Gte   *string
}

// Kind implements Filter.
func (*HexFilter) Kind() codec.Kind { return codec.Hex }

// DateFilter filters timestamp fields.
type DateFilter struct {
	Eq    *time.Time
	In    []time.Time
	NotIn []time.Time
	Lt    *time.Time
	Lte   *time.Time
	Gt    *time.Time
	Gte   *time.Time
}

// Kind implements Filter.
func (*DateFilter) Kind() codec.Kind { return codec.Date }

// BoolFilter filters boolean-as-felt fields.
type BoolFilter struct {
	Eq *bool
}

// Kind implements Filter.
func (*BoolFilter) Kind() codec.Kind { return codec.Bool }

// Input is an ordered set of field filters. Nested inputs address attributes
// of a sub-document and compile to dotted paths.
type Input struct {
	clauses []clause
}

type clause struct {
	field  string
	filter Filter
	nested *Input
}

// Add appends a filter for field. A nil filter is ignored.
func (in *Input) Add(field string, f Filter) *Input {
	if f != nil {
		in.clauses = append(in.clauses, clause{field: field, filter: f})
	}
	return in
}

// Nest appends a sub-document filter for field. A nil input is ignored.
func (in *Input) Nest(field string, sub *Input) *Input {
	if sub != nil {
		in.clauses = append(in.clauses, clause{field: field, nested: sub})
	}
	return in
}

// Each calls fn for every top-level clause in call order. nested is set for
// sub-document clauses and f for field clauses.
func (in *Input) Each(fn func(field string, f Filter, nested *Input)) {
	if in == nil {
		return
	}
	for _, cl := range in.clauses {
		fn(cl.field, cl.filter, cl.nested)
	}
}

// IsEmpty reports whether no filter was added.
func (in *Input) IsEmpty() bool {
	return in == nil || len(in.clauses) == 0
}
