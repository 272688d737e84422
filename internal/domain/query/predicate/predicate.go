// Package predicate defines the normalized per-field constraint set that the
// filter compiler produces and the stores evaluate.
package predicate

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Op is a constraint operator.
type Op string

// Operators, in the order they are applied by the compiler.
const (
	In    Op = "$in"
	NotIn Op = "$nin"
	Lt    Op = "$lt"
	Lte   Op = "$lte"
	Gt    Op = "$gt"
	Gte   Op = "$gte"
	Regex Op = "$regex"
)

var opOrder = []Op{In, NotIn, Lt, Lte, Gt, Gte, Regex}

// Record metadata paths maintained by the ingestion pipeline.
const (
	ValidFromPath = "_chain.valid_from"
	ValidToPath   = "_chain.valid_to"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindBytes
	kindTime
)

// Value is a literal operand: encoded bytes, a timestamp, or null.
type Value struct {
	kind valueKind
	b    []byte
	t    time.Time
}

// Bytes wraps an encoded scalar.
func Bytes(b []byte) Value { return Value{kind: kindBytes, b: b} }

// Time wraps a timestamp.
func Time(t time.Time) Value { return Value{kind: kindTime, t: t} }

// Null is the unset value.
func Null() Value { return Value{} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Raw returns []byte, time.Time or nil.
func (v Value) Raw() any {
	switch v.kind {
	case kindBytes:
		return v.b
	case kindTime:
		return v.t
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case kindBytes:
		return fmt.Sprintf("0x%x", v.b)
	case kindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return "null"
	}
}

// Anchor positions a pattern inside the matched value.
type Anchor int

// Pattern anchors.
const (
	Anywhere Anchor = iota
	AtStart
	AtEnd
)

// Pattern is a literal substring match.
type Pattern struct {
	Anchor  Anchor
	Literal []byte
}

// Match reports whether b satisfies the pattern.
func (p Pattern) Match(b []byte) bool {
	switch p.Anchor {
	case AtStart:
		return bytes.HasPrefix(b, p.Literal)
	case AtEnd:
		return bytes.HasSuffix(b, p.Literal)
	default:
		return bytes.Contains(b, p.Literal)
	}
}

// String renders the pattern as an anchored regular expression.
func (p Pattern) String() string {
	lit := regexp.QuoteMeta(string(p.Literal))
	switch p.Anchor {
	case AtStart:
		return "^" + lit
	case AtEnd:
		return lit + "$"
	default:
		return lit
	}
}

// Operand is the argument of one operator.
type Operand struct {
	value   Value
	list    []Value
	pattern *Pattern
}

// Scalar creates a single-value operand.
func Scalar(v Value) Operand { return Operand{value: v} }

// List creates a membership operand.
func List(vs []Value) Operand { return Operand{list: vs} }

// Match creates a pattern operand.
func Match(p Pattern) Operand { return Operand{pattern: &p} }

// Value returns the single value.
func (o Operand) Value() Value { return o.value }

// List returns the membership values.
func (o Operand) List() []Value { return o.list }

// Pattern returns the pattern, nil for non-pattern operands.
func (o Operand) Pattern() *Pattern { return o.pattern }

// Raw renders the operand with native Go values.
func (o Operand) Raw() any {
	switch {
	case o.pattern != nil:
		return o.pattern.String()
	case o.list != nil:
		out := make([]any, len(o.list))
		for i, v := range o.list {
			out[i] = v.Raw()
		}
		return out
	default:
		return o.value.Raw()
	}
}

func (o Operand) String() string {
	switch {
	case o.pattern != nil:
		return fmt.Sprintf("%q", o.pattern.String())
	case o.list != nil:
		parts := make([]string, len(o.list))
		for i, v := range o.list {
			parts[i] = v.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return o.value.String()
	}
}

// Field is the constraint set compiled for one field path: either an exact
// value or a set of operator constraints.
type Field struct {
	eq  *Value
	ops map[Op]Operand
}

// Equal creates an exact-match constraint.
func Equal(v Value) Field {
	return Field{eq: &v}
}

// SetEq makes v the baseline value, discarding operator constraints.
func (f *Field) SetEq(v Value) {
	f.eq = &v
	f.ops = nil
}

// Set assigns op, overwriting a previous assignment of the same op.
// Assigning any operator replaces an exact-match baseline.
func (f *Field) Set(op Op, o Operand) {
	if f.eq != nil || f.ops == nil {
		f.eq = nil
		f.ops = make(map[Op]Operand)
	}
	f.ops[op] = o
}

// Eq returns the exact-match value if set.
func (f Field) Eq() (Value, bool) {
	if f.eq == nil {
		return Value{}, false
	}
	return *f.eq, true
}

// Ops returns the assigned operators in canonical order.
func (f Field) Ops() []Op {
	out := make([]Op, 0, len(f.ops))
	for _, op := range opOrder {
		if _, ok := f.ops[op]; ok {
			out = append(out, op)
		}
	}
	return out
}

// Operand returns the argument of op.
func (f Field) Operand(op Op) (Operand, bool) {
	o, ok := f.ops[op]
	return o, ok
}

// IsEmpty reports whether no constraint is set.
func (f Field) IsEmpty() bool { return f.eq == nil && len(f.ops) == 0 }

// Raw renders the field as the exact value or an operator document.
func (f Field) Raw() any {
	if f.eq != nil {
		return f.eq.Raw()
	}
	doc := make(map[string]any, len(f.ops))
	for op, o := range f.ops {
		doc[string(op)] = o.Raw()
	}
	return doc
}

func (f Field) String() string {
	if f.eq != nil {
		return f.eq.String()
	}
	parts := make([]string, 0, len(f.ops))
	for _, op := range f.Ops() {
		parts = append(parts, string(op)+":"+f.ops[op].String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Predicate maps field paths to constraint sets. All fields must match.
type Predicate struct {
	fields map[string]Field
}

// New returns an empty predicate.
func New() Predicate {
	return Predicate{fields: make(map[string]Field)}
}

// Set assigns the constraints of path, replacing previous ones.
func (p *Predicate) Set(path string, f Field) {
	if p.fields == nil {
		p.fields = make(map[string]Field)
	}
	p.fields[path] = f
}

// Field returns the constraints of path.
func (p Predicate) Field(path string) (Field, bool) {
	f, ok := p.fields[path]
	return f, ok
}

// Paths returns the constrained paths in lexical order.
func (p Predicate) Paths() []string {
	out := make([]string, 0, len(p.fields))
	for k := range p.fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of constrained paths.
func (p Predicate) Len() int { return len(p.fields) }

// WithCurrentVersion returns a copy restricted to records whose invalidation
// marker is unset. Any caller constraint on the marker is replaced.
func (p Predicate) WithCurrentVersion() Predicate {
	out := New()
	for k, f := range p.fields {
		out.fields[k] = f
	}
	out.fields[ValidToPath] = Equal(Null())
	return out
}

// IsCurrentVersionOnly reports whether the snapshot restriction is in place.
func (p Predicate) IsCurrentVersionOnly() bool {
	f, ok := p.fields[ValidToPath]
	if !ok {
		return false
	}
	v, ok := f.Eq()
	return ok && v.IsNull()
}

// Raw renders the predicate as a document of native Go values.
func (p Predicate) Raw() map[string]any {
	out := make(map[string]any, len(p.fields))
	for k, f := range p.fields {
		out[k] = f.Raw()
	}
	return out
}

// String renders a canonical form, stable across equal predicates.
func (p Predicate) String() string {
	paths := p.Paths()
	parts := make([]string, len(paths))
	for i, k := range paths {
		parts[i] = k + ":" + p.fields[k].String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
