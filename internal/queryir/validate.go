package queryir

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/roach88/coviddata/internal/apperr"
)

// identPattern is the shape of every name rendered without quotes
// (table names, table aliases, column names, output aliases).
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsPlainIdent reports whether name may be rendered without quoting.
func IsPlainIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Validate checks that every identifier in the query resolves to something
// in scope and that every unquoted name is a plain identifier.
//
// Scopes:
//   - Column.Table must be a table alias declared in From.
//   - Idents in the select list and window clauses must be columns of the
//     Subquery source.
//   - Idents in GROUP BY and ORDER BY may also name this query's own output
//     columns.
//
// All problems are collected (no fail-fast). Each one is an apperr
// validation error naming the offending identifier.
//
// Validate is a pure function with no side effects.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)

	switch len(v.errs) {
	case 0:
		return nil
	case 1:
		return v.errs[0]
	default:
		return errors.Join(v.errs...)
	}
}

// validator accumulates problems during traversal.
type validator struct {
	errs []error
}

// scope is the set of names visible to one Select.
type scope struct {
	aliases map[string]bool // table aliases usable by Column
	source  map[string]bool // output columns of the Subquery source
	output  map[string]bool // this query's own output columns
}

func (v *validator) addError(value, format string, args ...any) {
	v.errs = append(v.errs, apperr.Validation("validate query", value, format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError("", "nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.addError(fmt.Sprintf("%T", q), "unsupported query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	sc := scope{
		aliases: map[string]bool{},
		source:  map[string]bool{},
		output:  map[string]bool{},
	}

	switch src := sel.From.(type) {
	case Table:
		v.validateTable(src, sc)
	case Subquery:
		v.validateSelect(src.Query)
		v.plain(src.Alias, "subquery alias")
		sc.aliases[src.Alias] = true
		for _, c := range src.Query.Columns() {
			sc.source[c] = true
		}
	case nil:
		v.addError("", "query has no FROM source")
	default:
		v.addError(fmt.Sprintf("%T", src), "unsupported source type %T", src)
	}

	if len(sel.Items) == 0 {
		v.addError("", "query selects no columns")
	}
	for _, item := range sel.Items {
		v.validateExpr(item.Expr, sc.source, sc, "select list")
		if item.Alias != "" {
			v.plain(item.Alias, "column alias")
		}
		name := item.Name()
		if name == "" {
			v.addError("", "select item %T needs an alias", item.Expr)
			continue
		}
		if sc.output[name] {
			v.addError(name, "duplicate output column %q", name)
		}
		sc.output[name] = true
	}

	for _, p := range sel.Where {
		v.validatePredicate(p, sc)
	}

	ordered := union(sc.source, sc.output)
	for _, g := range sel.GroupBy {
		v.validateExpr(g, ordered, sc, "GROUP BY")
	}
	for _, o := range sel.OrderBy {
		v.validateExpr(o.Expr, ordered, sc, "ORDER BY")
	}

	if sel.Limit != nil && *sel.Limit < 0 {
		v.addError(fmt.Sprint(*sel.Limit), "limit %d is negative", *sel.Limit)
	}
}

func (v *validator) validateTable(t Table, sc scope) {
	v.plain(t.Name, "table")
	v.plain(t.Alias, "table alias")
	sc.aliases[t.Alias] = true

	for _, j := range t.Joins {
		v.plain(j.Table, "table")
		v.plain(j.Alias, "table alias")
		if sc.aliases[j.Alias] {
			v.addError(j.Alias, "table alias %q declared twice", j.Alias)
		}
		sc.aliases[j.Alias] = true
		v.validateColumn(j.Left, sc)
		v.validateColumn(j.Right, sc)
	}
}

// validateExpr checks e with idents resolved against visible.
func (v *validator) validateExpr(e Expr, visible map[string]bool, sc scope, clause string) {
	switch expr := e.(type) {
	case Column:
		v.validateColumn(expr, sc)
	case Ident:
		if !visible[expr.Name] {
			v.addError(expr.Name, "unknown identifier %q in %s", expr.Name, clause)
		}
	case Sum:
		v.validateExpr(expr.Arg, visible, sc, clause)
	case Window:
		v.validateExpr(expr.Sum, sc.source, sc, "window")
		for _, p := range expr.PartitionBy {
			v.validateExpr(p, sc.source, sc, "window partition")
		}
		if len(expr.OrderBy) == 0 {
			v.addError("", "window has no ORDER BY")
		}
		for _, o := range expr.OrderBy {
			v.validateExpr(o.Expr, sc.source, sc, "window order")
		}
	case nil:
		v.addError("", "nil expression in %s", clause)
	default:
		v.addError(fmt.Sprintf("%T", e), "unsupported expression type %T in %s", e, clause)
	}
}

func (v *validator) validateColumn(c Column, sc scope) {
	v.plain(c.Name, "column")
	if c.Table != "" && !sc.aliases[c.Table] {
		v.addError(c.Table, "column %s.%s references undeclared table alias %q", c.Table, c.Name, c.Table)
	}
}

func (v *validator) validatePredicate(p Predicate, sc scope) {
	switch pred := p.(type) {
	case Compare:
		v.validateColumn(pred.Column, sc)
		switch pred.Op {
		case OpEq, OpGte, OpLte:
		default:
			v.addError(string(pred.Op), "unsupported operator %q", pred.Op)
		}
	case In:
		v.validateColumn(pred.Column, sc)
		if len(pred.Values) == 0 {
			v.addError(pred.Column.Name, "IN on %s has no values", pred.Column.Name)
		}
	case nil:
		v.addError("", "nil predicate")
	default:
		v.addError(fmt.Sprintf("%T", p), "unsupported predicate type %T", p)
	}
}

// plain records an error if name cannot be rendered unquoted.
func (v *validator) plain(name, what string) {
	if !IsPlainIdent(name) {
		v.addError(name, "invalid %s name %q", what, name)
	}
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
