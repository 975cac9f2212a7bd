package queryir

// Query represents a complete query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Select is the only query type; cumulative queries nest a Select as a
// Subquery source.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Expr is a value expression in a select list, GROUP BY or ORDER BY.
//
// Expr types:
//   - Column: qualified base-table column (c.date)
//   - Ident: reference to an output column in scope ("date")
//   - Sum: sum(<expr>)
//   - Window: sum(<expr>) OVER (PARTITION BY ... ORDER BY ...)
type Expr interface {
	exprNode()
}

// Source is what a Select reads from.
//
// Source types:
//   - Table: a base table with optional inner joins
//   - Subquery: a nested Select with an alias
type Source interface {
	sourceNode()
}

// Predicate is a WHERE condition. A Select's predicates are combined with AND.
//
// Predicate types:
//   - Compare: <column> <op> ?
//   - In: <column> IN (?, ?, ...)
type Predicate interface {
	predicateNode()
}

// Select is a single SELECT statement with fixed clause slots.
//
// Semantics:
//
//	SELECT <items> FROM <from> [WHERE <where...>] [GROUP BY <group...>]
//	[ORDER BY <order...>] [LIMIT ?]
//
// Empty slots emit nothing. A nil Limit emits no LIMIT clause; a Limit of 0
// emits LIMIT 0.
type Select struct {
	Items   []SelectItem
	From    Source
	Where   []Predicate
	GroupBy []Expr
	OrderBy []OrderKey
	Limit   *int
}

func (Select) queryNode() {}

// Columns returns the output column names in select order.
func (s Select) Columns() []string {
	cols := make([]string, len(s.Items))
	for i, item := range s.Items {
		cols[i] = item.Name()
	}
	return cols
}

// SelectItem is one entry of the select list.
type SelectItem struct {
	Expr  Expr
	Alias string // output name; empty keeps the expression's own name
}

// Name returns the output column name of the item.
func (i SelectItem) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	switch e := i.Expr.(type) {
	case Column:
		return e.Name
	case Ident:
		return e.Name
	}
	return ""
}

// Column is a base-table column qualified by its table alias.
//
// Example:
//
//	Column{Table: "c", Name: "amount"}  →  c.amount
type Column struct {
	Table string // table alias declared in From; empty for unqualified
	Name  string
}

func (Column) exprNode() {}

// Ident references an output column of this query or of its Subquery source.
// It renders quoted.
//
// Example:
//
//	Ident{Name: "date"}  →  "date"
type Ident struct {
	Name string
}

func (Ident) exprNode() {}

// Sum is the sum aggregate over Arg.
type Sum struct {
	Arg Expr
}

func (Sum) exprNode() {}

// Window is a running sum over partitions.
//
// Semantics:
//
//	sum(<arg>) OVER (PARTITION BY <partition...> ORDER BY <order...>)
//
// With the default frame every row sums its partition from the first row up
// to itself, so an amount column that is never negative yields a
// non-decreasing series per partition.
type Window struct {
	Sum         Sum
	PartitionBy []Expr
	OrderBy     []OrderKey
}

func (Window) exprNode() {}

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Expr Expr
	Desc bool
}

// Table is a base table with optional inner joins.
//
// Example:
//
//	Table{Name: "cases", Alias: "c", Joins: []Join{{
//	  Table: "countries", Alias: "co",
//	  Left:  Column{Table: "c", Name: "country_id"},
//	  Right: Column{Table: "co", Name: "id"},
//	}}}
//
// Translates to:
//
//	cases c INNER JOIN countries co ON c.country_id = co.id
type Table struct {
	Name  string
	Alias string
	Joins []Join
}

func (Table) sourceNode() {}

// Join is an INNER JOIN on column equality.
type Join struct {
	Table string
	Alias string
	Left  Column
	Right Column
}

// Subquery reads from a nested Select.
type Subquery struct {
	Query Select
	Alias string
}

func (Subquery) sourceNode() {}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Compare is <column> <op> <value>. Value is always bound as a parameter.
type Compare struct {
	Column Column
	Op     Op
	Value  any
}

func (Compare) predicateNode() {}

// In is <column> IN (<values...>). Every value is bound as a parameter.
type In struct {
	Column Column
	Values []any
}

func (In) predicateNode() {}
