// Package queryir provides the typed fragment representation of a case query.
//
// A query is a Select with a fixed set of clause slots:
//
//	Select{Items, From, Where, GroupBy, OrderBy, Limit}
//
// Each slot holds typed fragments instead of SQL text. Values live inside the
// predicate or limit that binds them, so the SQL backend (internal/querysql)
// can emit placeholders and collect parameters in one pass, and no fragment
// ever carries user text as SQL.
//
// ARCHITECTURE:
//
//	[filter.Filter] → [casequery builder] → [queryir.Select] → [querysql] → SQL + params
//
// SEALED INTERFACES:
//
// Query, Expr, Source and Predicate are sealed with marker methods. Only
// types in this package implement them, which keeps the backend type switches
// exhaustive.
//
// IDENTIFIERS:
//
// Two kinds of name appear in a query:
//   - Column: a qualified base-table column (c.amount, co.name). These are
//     builder constants; Validate checks them against a strict identifier
//     pattern and the table aliases declared in From.
//   - Ident: a reference to an output column (alias) of this query or of
//     the subquery it reads from. Idents are the only names derived from
//     caller input (sort fields, aggregation dimensions). Validate checks every
//     Ident against the columns actually in scope, and the backend quotes them.
//
// Validate is the single allowlist check for identifiers. A query that passes
// Validate can be compiled without interpolating anything unchecked.
//
// WINDOWED AGGREGATION:
//
// A Select may read from a Subquery and carry a Window item, which is how
// the cumulative results are expressed:
//
//	SELECT "country", sum("amount") OVER (PARTITION BY "country" ORDER BY "date" ASC) AS amount, "date"
//	FROM (SELECT co.name AS country, sum(c.amount) AS amount, c.date AS date ... GROUP BY c.date, co.name) AS grouped
package queryir
