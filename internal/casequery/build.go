// Package casequery builds the case queries: the filtered, optionally
// aggregated and sorted case listing, and the cumulative (running-sum)
// variants.
//
// Builders are pure functions of a filter.Filter and return either the
// queryir form (Build*) or the compiled querysql.Statement. They hold no
// state and are safe for concurrent use.
package casequery

import (
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/queryir"
	"github.com/roach88/coviddata/internal/querysql"
)

var compiler = querysql.NewSQLCompiler()

// Build returns the query for f, dispatching on f.Result.
func Build(f filter.Filter) (queryir.Select, error) {
	if f.Result.Cumulative() {
		return BuildCumulative(f.Result, f)
	}
	return BuildCases(f)
}

// Statement builds and compiles the query for f.
func Statement(f filter.Filter) (querysql.Statement, error) {
	sel, err := Build(f)
	if err != nil {
		return querysql.Statement{}, err
	}
	return compiler.Compile(sel)
}

// Cases builds and compiles the plain case query for f.
func Cases(f filter.Filter) (querysql.Statement, error) {
	sel, err := BuildCases(f)
	if err != nil {
		return querysql.Statement{}, err
	}
	return compiler.Compile(sel)
}

// Cumulative builds and compiles the cumulative query of type r for f.
func Cumulative(r filter.ResultType, f filter.Filter) (querysql.Statement, error) {
	sel, err := BuildCumulative(r, f)
	if err != nil {
		return querysql.Statement{}, err
	}
	return compiler.Compile(sel)
}
