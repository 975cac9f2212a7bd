package querysql

import "strings"

// Statement is a compiled query: the clause fragments kept apart, the
// positional parameters and the output column names.
//
// SQL concatenates the non-empty fragments in fixed order
// select → from → where → group by → order by → limit.
type Statement struct {
	Select  string
	From    string
	Where   string
	GroupBy string
	OrderBy string
	Limit   string

	// Params bind to the ? placeholders in SQL() order.
	Params []any

	// Columns are the output column names in select order.
	Columns []string
}

// SQL returns the full statement text.
func (s Statement) SQL() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{s.Select, s.From, s.Where, s.GroupBy, s.OrderBy, s.Limit} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Placeholders counts the ? placeholders in the statement text.
func (s Statement) Placeholders() int {
	return strings.Count(s.SQL(), "?")
}

// QuoteIdent quotes name as an SQLite identifier: wrapped in double quotes,
// embedded double quotes doubled.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
