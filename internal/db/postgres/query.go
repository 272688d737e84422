package postgres

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
)

const dialectPostgres = "postgres"

// Column maps a dotted field path to its column name.
func Column(path string) string {
	return strings.ReplaceAll(path, ".", "__")
}

// FieldPath maps a column name back to its dotted field path.
func FieldPath(column string) string {
	return strings.ReplaceAll(column, "__", ".")
}

// BuildFind compiles a find query into a prepared SELECT statement.
func BuildFind(q *db.FindQuery) (string, []any, error) {
	where, err := whereExpressions(q.Where)
	if err != nil {
		return "", nil, err
	}

	// Null sorts lowest in both directions, matching the memory store.
	col := goqu.I(Column(q.Sort.Path))
	sortExp := col.Desc().NullsLast()
	if q.Sort.Direction == order.Ascending {
		sortExp = col.Asc().NullsFirst()
	}

	stmt := goqu.Dialect(dialectPostgres).
		From(q.Collection).
		Prepared(true).
		Where(where...).
		Order(sortExp).
		Offset(uint(q.Skip)).
		Limit(uint(q.Limit))

	query, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build find query: %w", err)
	}
	return query, args, nil
}

func whereExpressions(p predicate.Predicate) ([]exp.Expression, error) {
	var out []exp.Expression
	for _, path := range p.Paths() {
		f, _ := p.Field(path)
		col := goqu.C(Column(path))

		if v, ok := f.Eq(); ok {
			if v.IsNull() {
				out = append(out, col.IsNull())
			} else {
				out = append(out, col.Eq(v.Raw()))
			}
			continue
		}

		for _, op := range f.Ops() {
			o, _ := f.Operand(op)
			e, err := opExpression(col, op, o)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", path, err)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func opExpression(col exp.IdentifierExpression, op predicate.Op, o predicate.Operand) (exp.Expression, error) {
	switch op {
	case predicate.In:
		return col.In(rawList(o.List())), nil
	case predicate.NotIn:
		// NULL is not a member of any list.
		return goqu.Or(col.NotIn(rawList(o.List())), col.IsNull()), nil
	case predicate.Lt:
		return col.Lt(o.Value().Raw()), nil
	case predicate.Lte:
		return col.Lte(o.Value().Raw()), nil
	case predicate.Gt:
		return col.Gt(o.Value().Raw()), nil
	case predicate.Gte:
		return col.Gte(o.Value().Raw()), nil
	case predicate.Regex:
		p := o.Pattern()
		if p == nil {
			return nil, fmt.Errorf("%s without pattern", op)
		}
		return col.Like(likePattern(*p)), nil
	default:
		return nil, fmt.Errorf("unsupported operator %s", op)
	}
}

// rawList is always passed as one slice argument so a single []byte operand
// is not mistaken for the list itself.
func rawList(vs []predicate.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Raw()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern renders a literal pattern as a bytea LIKE operand.
func likePattern(p predicate.Pattern) []byte {
	var b bytes.Buffer
	if p.Anchor != predicate.AtStart {
		b.WriteByte('%')
	}
	b.WriteString(likeEscaper.Replace(string(p.Literal)))
	if p.Anchor != predicate.AtEnd {
		b.WriteByte('%')
	}
	return b.Bytes()
}
