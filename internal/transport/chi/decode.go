package chi

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/where"
)

var chainDoc, chainValidFrom, _ = strings.Cut(predicate.ValidFromPath, ".")

// decodeWhere builds the filter input of an entity in its declared field
// order. Unknown field names are rejected.
func decodeWhere(s *entity.Schema, raw map[string]jsoniter.RawMessage) (*where.Input, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	in := new(where.Input)
	seen := 0
	for _, f := range s.Fields {
		msg, ok := raw[f.Name]
		if !ok {
			continue
		}
		seen++
		flt, err := decodeFilter(f, msg)
		if err != nil {
			return nil, fmt.Errorf("%w: where.%s: %w", domain.ErrInvalidRequest, f.Name, err)
		}
		in.Add(f.Name, flt)
	}

	if msg, ok := raw[entity.ChainField]; ok {
		seen++
		var cf chainFilter
		if err := strictJSON.Unmarshal(msg, &cf); err != nil {
			return nil, fmt.Errorf("%w: where.%s: %w", domain.ErrInvalidRequest, entity.ChainField, err)
		}
		if len(cf.ValidFrom) > 0 {
			flt, err := decodeFilter(entity.Field{Name: chainValidFrom, Kind: codec.Felt}, cf.ValidFrom)
			if err != nil {
				return nil, fmt.Errorf("%w: where.%s.validFrom: %w", domain.ErrInvalidRequest, entity.ChainField, err)
			}
			in.Nest(chainDoc, new(where.Input).Add(chainValidFrom, flt))
		}
	}

	if seen != len(raw) {
		return nil, unknownFields(s, raw, true)
	}
	return in, nil
}

// decodeOrder keeps the declared field order of the entity as precedence.
func decodeOrder(s *entity.Schema, raw map[string]OrderDirective) (*order.Input, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	in := new(order.Input)
	seen := 0
	for _, f := range s.Fields {
		d, ok := raw[f.Name]
		if !ok {
			continue
		}
		seen++
		in.Add(f.Name, order.Directive{Asc: d.Asc, Desc: d.Desc})
	}
	if seen != len(raw) {
		keys := make(map[string]jsoniter.RawMessage, len(raw))
		for k := range raw {
			keys[k] = nil
		}
		return nil, unknownFields(s, keys, false)
	}
	return in, nil
}

func unknownFields(s *entity.Schema, raw map[string]jsoniter.RawMessage, allowChain bool) error {
	var unknown []string
	for k := range raw {
		if _, ok := s.Field(k); ok || (allowChain && k == entity.ChainField) {
			continue
		}
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: unknown %s fields: %s", domain.ErrInvalidRequest, s.Entity, strings.Join(unknown, ", "))
}

func decodeFilter(f entity.Field, msg jsoniter.RawMessage) (where.Filter, error) {
	kind := f.FilterKind()
	if kind == codec.Bool {
		var ops boolOps
		if err := strictJSON.Unmarshal(msg, &ops); err != nil {
			return nil, err
		}
		return &where.BoolFilter{Eq: ops.Eq}, nil
	}

	var ops filterOps
	if err := strictJSON.Unmarshal(msg, &ops); err != nil {
		return nil, err
	}

	switch kind {
	case codec.String:
		return &where.StringFilter{
			Eq: ops.Eq, In: ops.In, NotIn: ops.NotIn,
			Lt: ops.Lt, Lte: ops.Lte, Gt: ops.Gt, Gte: ops.Gte,
			Contains: ops.Contains, StartsWith: ops.StartsWith, EndsWith: ops.EndsWith,
		}, nil
	case codec.Symbol:
		return &where.SymbolFilter{
			Vocab: f.Vocab,
			Eq:    ops.Eq, In: ops.In, NotIn: ops.NotIn,
			Lt: ops.Lt, Lte: ops.Lte, Gt: ops.Gt, Gte: ops.Gte,
			Contains: ops.Contains, StartsWith: ops.StartsWith, EndsWith: ops.EndsWith,
		}, nil
	}

	if err := ops.rejectPatterns(kind); err != nil {
		return nil, err
	}
	switch kind {
	case codec.Hex:
		return &where.HexFilter{
			Eq: ops.Eq, In: ops.In, NotIn: ops.NotIn,
			Lt: ops.Lt, Lte: ops.Lte, Gt: ops.Gt, Gte: ops.Gte,
		}, nil
	case codec.Felt:
		p := &literals[*big.Int]{parse: codec.ParseFelt}
		flt := &where.FeltFilter{
			Eq: p.one(ops.Eq), In: p.all(ops.In), NotIn: p.all(ops.NotIn),
			Lt: p.one(ops.Lt), Lte: p.one(ops.Lte), Gt: p.one(ops.Gt), Gte: p.one(ops.Gte),
		}
		return flt, p.err
	case codec.Date:
		p := &literals[time.Time]{parse: parseDate}
		flt := &where.DateFilter{
			Eq: p.opt(ops.Eq), In: p.all(ops.In), NotIn: p.all(ops.NotIn),
			Lt: p.opt(ops.Lt), Lte: p.opt(ops.Lte), Gt: p.opt(ops.Gt), Gte: p.opt(ops.Gte),
		}
		return flt, p.err
	}
	return nil, fmt.Errorf("field %s has no filter kind", f.Name)
}

func (o *filterOps) rejectPatterns(kind codec.Kind) error {
	patterns := []struct {
		name string
		v    *string
	}{{"contains", o.Contains}, {"startsWith", o.StartsWith}, {"endsWith", o.EndsWith}}
	for _, p := range patterns {
		if p.v != nil {
			return fmt.Errorf("operator %s is not supported on %s fields", p.name, kind)
		}
	}
	return nil
}

// literals parses wire strings into typed values. The first error sticks.
type literals[T any] struct {
	parse func(string) (T, error)
	err   error
}

func (p *literals[T]) one(v *string) T {
	var zero T
	if v == nil || p.err != nil {
		return zero
	}
	t, err := p.parse(*v)
	if err != nil {
		p.err = err
		return zero
	}
	return t
}

func (p *literals[T]) opt(v *string) *T {
	if v == nil {
		return nil
	}
	t := p.one(v)
	if p.err != nil {
		return nil
	}
	return &t
}

func (p *literals[T]) all(vs []string) []T {
	if len(vs) == 0 {
		return nil
	}
	out := make([]T, 0, len(vs))
	for i := range vs {
		out = append(out, p.one(&vs[i]))
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, domain.NewScalarEncoding("date", fmt.Sprintf("%q is not RFC 3339", s))
	}
	return t, nil
}
