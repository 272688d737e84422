package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/where"
)

var chainDoc, chainValidFrom, _ = strings.Cut(predicate.ValidFromPath, ".")

// conformWhere rebuilds in following the declared field order of s. Only
// declared fields and the version sub-document are accepted, and each filter
// must match the kind of its field. A symbol filter without a vocabulary
// takes the one of its field.
func conformWhere(s *entity.Schema, in *where.Input) (*where.Input, error) {
	if in.IsEmpty() {
		return in, nil
	}
	byField := make(map[string][]where.Filter)
	var (
		chain   []*where.Input
		unknown []string
	)
	in.Each(func(field string, f where.Filter, nested *where.Input) {
		switch {
		case nested != nil && field == chainDoc:
			chain = append(chain, nested)
		case nested != nil:
			unknown = append(unknown, field)
		default:
			if _, ok := s.Field(field); !ok {
				unknown = append(unknown, field)
				return
			}
			byField[field] = append(byField[field], f)
		}
	})
	if len(unknown) > 0 {
		return nil, unknownFields(s, "filter", unknown)
	}

	out := new(where.Input)
	for _, fd := range s.Fields {
		for _, f := range byField[fd.Name] {
			cf, err := conformFilter(fd, f)
			if err != nil {
				return nil, err
			}
			out.Add(fd.Name, cf)
		}
	}
	for _, sub := range chain {
		c, err := conformChain(sub)
		if err != nil {
			return nil, err
		}
		out.Nest(chainDoc, c)
	}
	return out, nil
}

func conformFilter(fd entity.Field, f where.Filter) (where.Filter, error) {
	if f.Kind() != fd.FilterKind() {
		return nil, fmt.Errorf("%w: where.%s: %s filter on a %s field",
			domain.ErrInvalidRequest, fd.Name, f.Kind(), fd.FilterKind())
	}
	sf, ok := f.(*where.SymbolFilter)
	if !ok || sf == nil || sf.Vocab == fd.Vocab {
		return f, nil
	}
	if sf.Vocab != "" {
		return nil, fmt.Errorf("%w: where.%s: vocabulary %s, want %s",
			domain.ErrInvalidRequest, fd.Name, sf.Vocab, fd.Vocab)
	}
	cp := *sf
	cp.Vocab = fd.Vocab
	return &cp, nil
}

// conformChain accepts only a felt filter on the version start block.
func conformChain(in *where.Input) (*where.Input, error) {
	out := new(where.Input)
	var err error
	in.Each(func(field string, f where.Filter, nested *where.Input) {
		if err != nil {
			return
		}
		if nested != nil || field != chainValidFrom {
			err = fmt.Errorf("%w: where.%s.%s: unknown field", domain.ErrInvalidRequest, entity.ChainField, field)
			return
		}
		if f.Kind() != codec.Felt {
			err = fmt.Errorf("%w: where.%s.%s: %s filter on a felt field", domain.ErrInvalidRequest, entity.ChainField, field, f.Kind())
			return
		}
		out.Add(field, f)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// conformOrder lists the directives of in in the declared field order of s,
// so precedence never depends on the order they were added in. A later
// directive on the same field replaces an earlier one.
func conformOrder(s *entity.Schema, in *order.Input) (*order.Input, error) {
	if in == nil {
		return nil, nil
	}
	dirs := make(map[string]order.Directive)
	var unknown []string
	in.Each(func(path string, d order.Directive) {
		if _, ok := s.Field(path); !ok {
			unknown = append(unknown, path)
			return
		}
		dirs[path] = d
	})
	if len(unknown) > 0 {
		return nil, unknownFields(s, "sort", unknown)
	}

	out := new(order.Input)
	for _, fd := range s.Fields {
		if d, ok := dirs[fd.Name]; ok {
			out.Add(fd.Name, d)
		}
	}
	return out, nil
}

func unknownFields(s *entity.Schema, what string, names []string) error {
	sort.Strings(names)
	return fmt.Errorf("%w: unknown %s %s fields: %s", domain.ErrInvalidRequest, s.Entity, what, strings.Join(names, ", "))
}
