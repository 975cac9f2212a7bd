package casequery

import (
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/queryir"
)

// Table aliases used by every case query.
const (
	aliasCases     = "c"
	aliasCountries = "co"
	aliasProvinces = "p"
)

var (
	colAmount       = queryir.Column{Table: aliasCases, Name: "amount"}
	colType         = queryir.Column{Table: aliasCases, Name: "type"}
	colDate         = queryir.Column{Table: aliasCases, Name: "date"}
	colCountryID    = queryir.Column{Table: aliasCases, Name: "country_id"}
	colProvinceID   = queryir.Column{Table: aliasCases, Name: "province_id"}
	colCountryName  = queryir.Column{Table: aliasCountries, Name: "name"}
	colProvinceName = queryir.Column{Table: aliasProvinces, Name: "name"}
)

// rawColumns are the per-row columns of a non-aggregated query, in output order.
var rawColumns = []string{"amount", "type", "date", "country"}

// dimensionColumns maps an output name to the base column behind it.
var dimensionColumns = map[string]queryir.Column{
	"amount":                   colAmount,
	string(filter.AggDate):     colDate,
	string(filter.AggType):     colType,
	string(filter.AggCountry):  colCountryName,
	string(filter.AggProvince): colProvinceName,
}

// column returns the select item exposing the named output column.
func column(name string) queryir.SelectItem {
	return queryir.SelectItem{Expr: dimensionColumns[name], Alias: name}
}

// sumAmount is sum(c.amount) AS amount.
func sumAmount() queryir.SelectItem {
	return queryir.SelectItem{Expr: queryir.Sum{Arg: colAmount}, Alias: "amount"}
}

// source is cases joined to countries, and to provinces when asked.
func source(withProvinces bool) queryir.Table {
	t := queryir.Table{
		Name:  "cases",
		Alias: aliasCases,
		Joins: []queryir.Join{{
			Table: "countries",
			Alias: aliasCountries,
			Left:  colCountryID,
			Right: queryir.Column{Table: aliasCountries, Name: "id"},
		}},
	}
	if withProvinces {
		t.Joins = append(t.Joins, queryir.Join{
			Table: "provinces",
			Alias: aliasProvinces,
			Left:  colProvinceID,
			Right: queryir.Column{Table: aliasProvinces, Name: "id"},
		})
	}
	return t
}

// predicates returns one predicate per active filter, in the order
// country, province, exact date, lower bound, upper bound, case type.
func predicates(f filter.Filter) []queryir.Predicate {
	var preds []queryir.Predicate

	switch len(f.CountryIDs) {
	case 0:
	case 1:
		preds = append(preds, queryir.Compare{Column: colCountryID, Op: queryir.OpEq, Value: f.CountryIDs[0]})
	default:
		values := make([]any, len(f.CountryIDs))
		for i, id := range f.CountryIDs {
			values[i] = id
		}
		preds = append(preds, queryir.In{Column: colCountryID, Values: values})
	}

	if f.ProvinceID != nil {
		preds = append(preds, queryir.Compare{Column: colProvinceID, Op: queryir.OpEq, Value: *f.ProvinceID})
	}

	switch d := f.Date.(type) {
	case filter.Exact:
		preds = append(preds, queryir.Compare{Column: colDate, Op: queryir.OpEq, Value: d.Day})
	case filter.Range:
		if d.From != nil {
			preds = append(preds, queryir.Compare{Column: colDate, Op: queryir.OpGte, Value: *d.From})
		}
		if d.To != nil {
			preds = append(preds, queryir.Compare{Column: colDate, Op: queryir.OpLte, Value: *d.To})
		}
	}

	if f.CaseType != "" {
		preds = append(preds, queryir.Compare{Column: colType, Op: queryir.OpEq, Value: f.CaseType})
	}

	return preds
}
