// Package order resolves a caller's ordering request into a single sort key.
package order

// Direction is a sort direction.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Directive is the optional asc/desc pair a caller sets on one field.
type Directive struct {
	Asc  bool
	Desc bool
}

// Input lists directives in the declared field order of the entity.
type Input struct {
	fields []entry
}

type entry struct {
	path string
	dir  Directive
}

// Add appends a directive for path. Declared order is call order.
func (in *Input) Add(path string, d Directive) *Input {
	in.fields = append(in.fields, entry{path: path, dir: d})
	return in
}

// Each calls fn for every directive in call order.
func (in *Input) Each(fn func(path string, d Directive)) {
	if in == nil {
		return
	}
	for _, e := range in.fields {
		fn(e.path, e.dir)
	}
}

// Key is a resolved sort field and direction.
type Key struct {
	Path      string
	Direction Direction
}

// Resolve returns the first field in declared order whose directive sets asc
// or desc. Asc is checked before desc on the same field. When nothing is set
// the fallback is returned.
func Resolve(in *Input, fallback Key) Key {
	if in == nil {
		return fallback
	}
	for _, e := range in.fields {
		switch {
		case e.dir.Asc:
			return Key{Path: e.path, Direction: Ascending}
		case e.dir.Desc:
			return Key{Path: e.path, Direction: Descending}
		}
	}
	return fallback
}
