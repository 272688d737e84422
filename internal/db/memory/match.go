package memory

import (
	"bytes"
	"time"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
)

// Matches reports whether rec satisfies every field constraint of p.
// A missing key reads as null.
func Matches(p predicate.Predicate, rec db.Record) bool {
	for _, path := range p.Paths() {
		f, _ := p.Field(path)
		if !matchField(f, rec[path]) {
			return false
		}
	}
	return true
}

func matchField(f predicate.Field, v any) bool {
	if eq, ok := f.Eq(); ok {
		return equal(eq.Raw(), v)
	}
	for _, op := range f.Ops() {
		o, _ := f.Operand(op)
		if !matchOp(op, o, v) {
			return false
		}
	}
	return true
}

func matchOp(op predicate.Op, o predicate.Operand, v any) bool {
	switch op {
	case predicate.In:
		return member(o.List(), v)
	case predicate.NotIn:
		return !member(o.List(), v)
	case predicate.Lt, predicate.Lte, predicate.Gt, predicate.Gte:
		bound := o.Value().Raw()
		if isNull(v) || isNull(bound) || !sameKind(v, bound) {
			return false
		}
		c := compare(v, bound)
		switch op {
		case predicate.Lt:
			return c < 0
		case predicate.Lte:
			return c <= 0
		case predicate.Gt:
			return c > 0
		default:
			return c >= 0
		}
	case predicate.Regex:
		b, ok := v.([]byte)
		return ok && o.Pattern() != nil && o.Pattern().Match(b)
	default:
		return false
	}
}

func member(list []predicate.Value, v any) bool {
	for _, x := range list {
		if equal(x.Raw(), v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}
	if !sameKind(a, b) {
		return false
	}
	return compare(a, b) == 0
}

func sameKind(a, b any) bool {
	switch a.(type) {
	case []byte:
		_, ok := b.([]byte)
		return ok
	case time.Time:
		_, ok := b.(time.Time)
		return ok
	}
	return false
}

// compare orders null first, then bytes, then times.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case []byte:
		return bytes.Compare(x, b.([]byte))
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

// isNull treats a nil byte slice like a missing value.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.([]byte)
	return ok && b == nil
}

func rank(v any) int {
	if isNull(v) {
		return 0
	}
	switch v.(type) {
	case []byte:
		return 1
	case time.Time:
		return 2
	}
	return 3
}
