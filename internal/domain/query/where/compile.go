package where

import (
	"fmt"
	"math/big"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
)

// Compiler turns filter inputs into predicates, encoding literal operands
// with the codec.
type Compiler struct {
	codec *codec.Codec
}

// NewCompiler creates a Compiler.
func NewCompiler(c *codec.Codec) *Compiler {
	return &Compiler{codec: c}
}

// Compile builds the predicate for in, always including the current-version
// restriction. A nil input yields the restriction alone. The first literal
// that fails to encode aborts compilation.
func (c *Compiler) Compile(in *Input) (predicate.Predicate, error) {
	p := predicate.New()
	if err := c.compileInto(&p, "", in); err != nil {
		return predicate.Predicate{}, err
	}
	return p.WithCurrentVersion(), nil
}

func (c *Compiler) compileInto(p *predicate.Predicate, prefix string, in *Input) error {
	if in.IsEmpty() {
		return nil
	}
	for _, cl := range in.clauses {
		path := cl.field
		if prefix != "" {
			path = prefix + "." + cl.field
		}
		if cl.nested != nil {
			if err := c.compileInto(p, path, cl.nested); err != nil {
				return err
			}
			continue
		}
		f, err := c.compileField(cl.filter)
		if err != nil {
			return fmt.Errorf("filter %s: %w", path, err)
		}
		if !f.IsEmpty() {
			p.Set(path, f)
		}
	}
	return nil
}

func (c *Compiler) compileField(f Filter) (predicate.Field, error) {
	switch f := f.(type) {
	case *StringFilter:
		if f == nil {
			return predicate.Field{}, nil
		}
		return compileStringLike(stringOps(f.Eq, f.In, f.NotIn, f.Lt, f.Lte, f.Gt, f.Gte),
			patterns{f.Contains, f.StartsWith, f.EndsWith}, encodeString)
	case *SymbolFilter:
		if f == nil {
			return predicate.Field{}, nil
		}
		return compileStringLike(stringOps(f.Eq, f.In, f.NotIn, f.Lt, f.Lte, f.Gt, f.Gte),
			patterns{f.Contains, f.StartsWith, f.EndsWith}, c.symbolEncoder(f.Vocab))
	case *FeltFilter:
		if f == nil {
			return predicate.Field{}, nil
		}
		return compileOps(ops[*big.Int]{ref(f.Eq), f.In, f.NotIn, ref(f.Lt), ref(f.Lte), ref(f.Gt), ref(f.Gte)}, encodeFelt)
	case *HexFilter:
		if f == nil {
			return predicate.Field{}, nil
		}
		return compileOps(stringOps(f.Eq, f.In, f.NotIn, f.Lt, f.Lte, f.Gt, f.Gte), encodeHex)
	case *DateFilter:
		if f == nil {
			return predicate.Field{}, nil
		}
		return compileOps(ops[time.Time]{f.Eq, f.In, f.NotIn, f.Lt, f.Lte, f.Gt, f.Gte}, encodeDate)
	case *BoolFilter:
		if f == nil || f.Eq == nil {
			return predicate.Field{}, nil
		}
		return predicate.Equal(predicate.Bytes(codec.EncodeBool(*f.Eq))), nil
	default:
		return predicate.Field{}, fmt.Errorf("unsupported filter kind %T", f)
	}
}

// ops is the range/membership operator set shared by every non-boolean kind.
type ops[T any] struct {
	eq    *T
	in    []T
	notIn []T
	lt    *T
	lte   *T
	gt    *T
	gte   *T
}

// ref lifts a pointer-typed bound into the ops slot, keeping nil as unset.
func ref[T any](v *T) **T {
	if v == nil {
		return nil
	}
	return &v
}

func stringOps(eq *string, in, notIn []string, lt, lte, gt, gte *string) ops[string] {
	return ops[string]{eq, in, notIn, lt, lte, gt, gte}
}

type patterns struct {
	contains   *string
	startsWith *string
	endsWith   *string
}

type encoder[T any] func(T) (predicate.Value, error)

// compileOps applies eq, in, notIn, lt, lte, gt, gte in that order. Each
// assignment overwrites an earlier one for the same key, and any operator
// replaces an eq baseline.
func compileOps[T any](o ops[T], enc encoder[T]) (predicate.Field, error) {
	var f predicate.Field
	if o.eq != nil {
		v, err := enc(*o.eq)
		if err != nil {
			return f, err
		}
		f.SetEq(v)
	}
	for _, m := range []struct {
		op   predicate.Op
		vals []T
	}{{predicate.In, o.in}, {predicate.NotIn, o.notIn}} {
		if len(m.vals) == 0 {
			continue
		}
		list := make([]predicate.Value, len(m.vals))
		for i, x := range m.vals {
			v, err := enc(x)
			if err != nil {
				return f, err
			}
			list[i] = v
		}
		f.Set(m.op, predicate.List(list))
	}
	for _, b := range []struct {
		op  predicate.Op
		val *T
	}{{predicate.Lt, o.lt}, {predicate.Lte, o.lte}, {predicate.Gt, o.gt}, {predicate.Gte, o.gte}} {
		if b.val == nil {
			continue
		}
		v, err := enc(*b.val)
		if err != nil {
			return f, err
		}
		f.Set(b.op, predicate.Scalar(v))
	}
	return f, nil
}

// compileStringLike adds contains, startsWith and endsWith after the common
// operators. All three share the $regex key, so the last one set wins.
func compileStringLike(o ops[string], p patterns, enc encoder[string]) (predicate.Field, error) {
	f, err := compileOps(o, enc)
	if err != nil {
		return f, err
	}
	for _, m := range []struct {
		anchor predicate.Anchor
		val    *string
	}{{predicate.Anywhere, p.contains}, {predicate.AtStart, p.startsWith}, {predicate.AtEnd, p.endsWith}} {
		if m.val == nil {
			continue
		}
		v, err := enc(*m.val)
		if err != nil {
			return f, err
		}
		lit, _ := v.Raw().([]byte)
		f.Set(predicate.Regex, predicate.Match(predicate.Pattern{Anchor: m.anchor, Literal: lit}))
	}
	return f, nil
}

func encodeString(s string) (predicate.Value, error) {
	return predicate.Bytes(codec.EncodeString(s)), nil
}

func encodeHex(s string) (predicate.Value, error) {
	b, err := codec.EncodeHex(s)
	if err != nil {
		return predicate.Value{}, err
	}
	return predicate.Bytes(b), nil
}

func encodeFelt(v *big.Int) (predicate.Value, error) {
	b, err := codec.EncodeFelt(v)
	if err != nil {
		return predicate.Value{}, err
	}
	return predicate.Bytes(b), nil
}

func encodeDate(t time.Time) (predicate.Value, error) {
	return predicate.Time(t), nil
}

func (c *Compiler) symbolEncoder(n vocab.Name) encoder[string] {
	return func(name string) (predicate.Value, error) {
		b, err := c.codec.EncodeSymbol(n, name)
		if err != nil {
			return predicate.Value{}, err
		}
		return predicate.Bytes(b), nil
	}
}
