package casequery

import (
	"strings"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/queryir"
)

// BuildCases returns the plain (non-cumulative) case query for f.
//
// With aggregations the query selects sum(c.amount) plus one column per
// dimension and groups by those dimensions in request order. Without them it
// selects the raw per-row columns and never groups.
func BuildCases(f filter.Filter) (queryir.Select, error) {
	withProvinces := f.ProvinceID != nil || f.HasAggregation(filter.AggProvince)

	sel := queryir.Select{
		From:  source(withProvinces),
		Where: predicates(f),
		Limit: f.Limit,
	}

	if len(f.Aggregations) > 0 {
		sel.Items = append(sel.Items, sumAmount())
		for _, a := range f.Aggregations {
			sel.Items = append(sel.Items, column(string(a)))
			sel.GroupBy = append(sel.GroupBy, queryir.Ident{Name: string(a)})
		}
	} else {
		for _, name := range rawColumns {
			sel.Items = append(sel.Items, column(name))
		}
		if f.ProvinceID != nil {
			sel.Items = append(sel.Items, column(string(filter.AggProvince)))
		}
	}

	order, err := orderKeys(f.Sort, sel.Columns())
	if err != nil {
		return queryir.Select{}, err
	}
	sel.OrderBy = order

	return sel, nil
}

// orderKeys maps sort entries to ORDER BY keys. Each field must be one of
// the query's output columns; identifiers cannot be bound as parameters, so
// anything else is rejected here.
func orderKeys(sorts []filter.Sort, columns []string) ([]queryir.OrderKey, error) {
	if len(sorts) == 0 {
		return nil, nil
	}

	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}

	keys := make([]queryir.OrderKey, 0, len(sorts))
	for _, s := range sorts {
		if !allowed[s.Field] {
			return nil, apperr.Validation("build query", s.String(),
				"sort field %q is not a column of this result (%s)", s.String(), strings.Join(columns, ", "))
		}
		keys = append(keys, queryir.OrderKey{Expr: queryir.Ident{Name: s.Field}, Desc: s.Desc})
	}
	return keys, nil
}
