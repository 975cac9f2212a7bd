package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/coviddata/internal/model"
	"github.com/roach88/coviddata/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: All values are parameterized (never interpolated).
// CRITICAL: Every query passes queryir.Validate before any SQL is emitted.
//
// SQLCompiler holds no state and is safe for concurrent use.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to a Statement.
//
// Returns an apperr validation error if the query references an identifier
// that is not in scope.
func (c *SQLCompiler) Compile(q queryir.Query) (Statement, error) {
	if q == nil {
		return Statement{}, fmt.Errorf("cannot compile nil query")
	}

	if err := queryir.Validate(q); err != nil {
		return Statement{}, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return Statement{}, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect fills each clause slot in textual order so parameters are
// collected in the order their placeholders appear.
func (c *SQLCompiler) compileSelect(q queryir.Select) (Statement, error) {
	var stmt Statement

	items := make([]string, len(q.Items))
	for i, item := range q.Items {
		sql := c.compileExpr(item.Expr)
		if item.Alias != "" {
			sql += " AS " + item.Alias
		}
		items[i] = sql
	}
	stmt.Select = "SELECT " + strings.Join(items, ", ")

	from, fromParams, err := c.compileSource(q.From)
	if err != nil {
		return Statement{}, err
	}
	stmt.From = "FROM " + from
	stmt.Params = append(stmt.Params, fromParams...)

	if len(q.Where) > 0 {
		parts := make([]string, len(q.Where))
		for i, p := range q.Where {
			sql, params, err := c.compilePredicate(p)
			if err != nil {
				return Statement{}, fmt.Errorf("compile filter: %w", err)
			}
			parts[i] = sql
			stmt.Params = append(stmt.Params, params...)
		}
		stmt.Where = "WHERE " + strings.Join(parts, " AND ")
	}

	if len(q.GroupBy) > 0 {
		parts := make([]string, len(q.GroupBy))
		for i, g := range q.GroupBy {
			parts[i] = c.compileExpr(g)
		}
		stmt.GroupBy = "GROUP BY " + strings.Join(parts, ", ")
	}

	if len(q.OrderBy) > 0 {
		stmt.OrderBy = "ORDER BY " + c.compileOrder(q.OrderBy)
	}

	if q.Limit != nil {
		stmt.Limit = "LIMIT ?"
		stmt.Params = append(stmt.Params, int64(*q.Limit))
	}

	stmt.Columns = q.Columns()
	return stmt, nil
}

// compileExpr renders an expression. Column names are plain identifiers
// (checked by Validate); Idents are quoted.
func (c *SQLCompiler) compileExpr(e queryir.Expr) string {
	switch expr := e.(type) {
	case queryir.Column:
		if expr.Table == "" {
			return expr.Name
		}
		return expr.Table + "." + expr.Name
	case queryir.Ident:
		return QuoteIdent(expr.Name)
	case queryir.Sum:
		return "sum(" + c.compileExpr(expr.Arg) + ")"
	case queryir.Window:
		var over []string
		if len(expr.PartitionBy) > 0 {
			parts := make([]string, len(expr.PartitionBy))
			for i, p := range expr.PartitionBy {
				parts[i] = c.compileExpr(p)
			}
			over = append(over, "PARTITION BY "+strings.Join(parts, ", "))
		}
		over = append(over, "ORDER BY "+c.compileOrder(expr.OrderBy))
		return c.compileExpr(expr.Sum) + " OVER (" + strings.Join(over, " ") + ")"
	default:
		// Unreachable after Validate.
		panic(fmt.Sprintf("querysql: unsupported expression type %T", e))
	}
}

func (c *SQLCompiler) compileOrder(keys []queryir.OrderKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts[i] = c.compileExpr(k.Expr) + " " + dir
	}
	return strings.Join(parts, ", ")
}

// compileSource renders the FROM target (without the FROM keyword).
func (c *SQLCompiler) compileSource(s queryir.Source) (string, []any, error) {
	switch src := s.(type) {
	case queryir.Table:
		sql := src.Name + " " + src.Alias
		for _, j := range src.Joins {
			sql += fmt.Sprintf(" INNER JOIN %s %s ON %s = %s",
				j.Table, j.Alias, c.compileExpr(j.Left), c.compileExpr(j.Right))
		}
		return sql, nil, nil
	case queryir.Subquery:
		inner, err := c.compileSelect(src.Query)
		if err != nil {
			return "", nil, fmt.Errorf("compile subquery: %w", err)
		}
		return "(" + inner.SQL() + ") AS " + src.Alias, inner.Params, nil
	default:
		return "", nil, fmt.Errorf("unsupported source type: %T", s)
	}
}

// compilePredicate compiles a predicate to a WHERE fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Compare:
		param, err := toParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("convert value: %w", err)
		}
		return fmt.Sprintf("%s %s ?", c.compileExpr(pred.Column), pred.Op), []any{param}, nil
	case queryir.In:
		placeholders := make([]string, len(pred.Values))
		params := make([]any, len(pred.Values))
		for i, v := range pred.Values {
			param, err := toParam(v)
			if err != nil {
				return "", nil, fmt.Errorf("convert value %d: %w", i, err)
			}
			placeholders[i] = "?"
			params[i] = param
		}
		return fmt.Sprintf("%s IN (%s)", c.compileExpr(pred.Column), strings.Join(placeholders, ", ")), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// toParam converts a predicate value to a driver parameter.
// Dates bind as YYYY-MM-DD text, matching how the store writes them.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case model.CaseType:
		return string(val), nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case time.Time:
		return val.Format(model.DateLayout), nil
	case nil:
		return nil, fmt.Errorf("nil cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
