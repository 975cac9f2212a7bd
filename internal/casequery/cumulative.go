package casequery

import (
	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/queryir"
)

// groupedAlias names the inner query of a cumulative result.
const groupedAlias = "grouped"

// shape describes one cumulative variant.
type shape struct {
	// columns are the output columns, identical for inner and outer query.
	columns []string
	// partition are the window partition keys (the non-date dimensions).
	partition []string
	// countryRequired demands exactly one country id in the filter.
	countryRequired bool
}

var shapes = map[filter.ResultType]shape{
	filter.ResultCumulativeDate: {
		columns:   []string{"type", "amount", "date", "country"},
		partition: []string{"type", "country"},
	},
	filter.ResultCumulativeDateCountry: {
		columns:         []string{"type", "amount", "date", "country"},
		partition:       []string{"type", "country"},
		countryRequired: true,
	},
	filter.ResultCumulativeCountry: {
		columns:   []string{"country", "amount", "date"},
		partition: []string{"country"},
	},
	filter.ResultCumulativeProvince: {
		columns:         []string{"province", "amount", "date"},
		partition:       []string{"province"},
		countryRequired: true,
	},
}

// BuildCumulative returns the two-level running-sum query for result type r.
//
// The inner query applies every filter of f, then groups cases by date and
// the partition keys, summing amounts. The outer query runs
// sum(amount) OVER (PARTITION BY <keys> ORDER BY date ASC) over the grouped
// rows, so totals only ever accumulate the filtered subset. Rows come out by
// date ascending, ties broken by the partition keys.
//
// Sort, aggregation and limit in f do not apply to cumulative results.
func BuildCumulative(r filter.ResultType, f filter.Filter) (queryir.Select, error) {
	sh, ok := shapes[r]
	if !ok {
		return queryir.Select{}, apperr.Validation("build cumulative", string(r), "result type %q is not cumulative", r)
	}
	if sh.countryRequired && len(f.CountryIDs) != 1 {
		return queryir.Select{}, apperr.Validation("build cumulative", string(r),
			"result type %s requires exactly one country, got %d", r, len(f.CountryIDs))
	}

	inner := queryir.Select{
		From:    source(contains(sh.partition, string(filter.AggProvince)) || f.ProvinceID != nil),
		Where:   predicates(f),
		GroupBy: []queryir.Expr{colDate},
	}
	for _, name := range sh.columns {
		if name == "amount" {
			inner.Items = append(inner.Items, sumAmount())
			continue
		}
		inner.Items = append(inner.Items, column(name))
	}
	for _, key := range sh.partition {
		inner.GroupBy = append(inner.GroupBy, dimensionColumns[key])
	}

	partition := make([]queryir.Expr, len(sh.partition))
	for i, key := range sh.partition {
		partition[i] = queryir.Ident{Name: key}
	}
	byDate := queryir.OrderKey{Expr: queryir.Ident{Name: string(filter.AggDate)}}

	outer := queryir.Select{
		From:    queryir.Subquery{Query: inner, Alias: groupedAlias},
		OrderBy: []queryir.OrderKey{byDate},
	}
	for _, name := range sh.columns {
		if name == "amount" {
			outer.Items = append(outer.Items, queryir.SelectItem{
				Expr: queryir.Window{
					Sum:         queryir.Sum{Arg: queryir.Ident{Name: "amount"}},
					PartitionBy: partition,
					OrderBy:     []queryir.OrderKey{byDate},
				},
				Alias: "amount",
			})
			continue
		}
		outer.Items = append(outer.Items, queryir.SelectItem{Expr: queryir.Ident{Name: name}})
	}
	for _, key := range sh.partition {
		outer.OrderBy = append(outer.OrderBy, queryir.OrderKey{Expr: queryir.Ident{Name: key}})
	}

	return outer, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
