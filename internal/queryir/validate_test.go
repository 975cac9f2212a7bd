package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/apperr"
)

func casesTable() Table {
	return Table{
		Name:  "cases",
		Alias: "c",
		Joins: []Join{{
			Table: "countries",
			Alias: "co",
			Left:  Column{Table: "c", Name: "country_id"},
			Right: Column{Table: "co", Name: "id"},
		}},
	}
}

func TestValidate_AggregateQuery(t *testing.T) {
	query := Select{
		Items: []SelectItem{
			{Expr: Sum{Arg: Column{Table: "c", Name: "amount"}}, Alias: "amount"},
			{Expr: Column{Table: "co", Name: "name"}, Alias: "country"},
		},
		From:    casesTable(),
		Where:   []Predicate{Compare{Column: Column{Table: "c", Name: "type"}, Op: OpEq, Value: "dead"}},
		GroupBy: []Expr{Ident{Name: "country"}},
		OrderBy: []OrderKey{{Expr: Ident{Name: "amount"}, Desc: true}},
	}

	assert.NoError(t, Validate(query))
	assert.NoError(t, Validate(&query))
}

func TestValidate_UnknownOrderIdent(t *testing.T) {
	query := Select{
		Items:   []SelectItem{{Expr: Column{Table: "c", Name: "amount"}, Alias: "amount"}},
		From:    casesTable(),
		OrderBy: []OrderKey{{Expr: Ident{Name: "badcolumn"}}},
	}

	err := Validate(query)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), `unknown identifier "badcolumn" in ORDER BY`)
}

func TestValidate_InjectionAttemptInIdent(t *testing.T) {
	query := Select{
		Items:   []SelectItem{{Expr: Column{Table: "c", Name: "amount"}, Alias: "amount"}},
		From:    casesTable(),
		GroupBy: []Expr{Ident{Name: `amount"; DROP TABLE cases; --`}},
	}

	err := Validate(query)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestValidate_UndeclaredAlias(t *testing.T) {
	query := Select{
		Items: []SelectItem{{Expr: Column{Table: "p", Name: "name"}, Alias: "province"}},
		From:  casesTable(),
	}

	err := Validate(query)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared table alias "p"`)
}

func TestValidate_BadColumnName(t *testing.T) {
	query := Select{
		Items: []SelectItem{{Expr: Column{Table: "c", Name: "amount; --"}, Alias: "amount"}},
		From:  casesTable(),
	}

	assert.Error(t, Validate(query))
}

func TestValidate_StructuralProblemsCollected(t *testing.T) {
	limit := -1
	query := Select{
		Limit: &limit,
		Where: []Predicate{In{Column: Column{Name: "country_id"}}},
	}

	err := Validate(query)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "no FROM source")
	assert.Contains(t, msg, "selects no columns")
	assert.Contains(t, msg, "IN on country_id has no values")
	assert.Contains(t, msg, "limit -1 is negative")
}

func TestValidate_DuplicateOutputColumn(t *testing.T) {
	query := Select{
		Items: []SelectItem{
			{Expr: Column{Table: "c", Name: "date"}, Alias: "date"},
			{Expr: Column{Table: "c", Name: "date"}, Alias: "date"},
		},
		From: casesTable(),
	}

	err := Validate(query)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate output column "date"`)
}

func TestValidate_WindowOverSubquery(t *testing.T) {
	inner := Select{
		Items: []SelectItem{
			{Expr: Column{Table: "co", Name: "name"}, Alias: "country"},
			{Expr: Sum{Arg: Column{Table: "c", Name: "amount"}}, Alias: "amount"},
			{Expr: Column{Table: "c", Name: "date"}, Alias: "date"},
		},
		From:    casesTable(),
		GroupBy: []Expr{Column{Table: "c", Name: "date"}, Column{Table: "co", Name: "name"}},
	}

	outer := Select{
		Items: []SelectItem{
			{Expr: Ident{Name: "country"}},
			{Expr: Window{
				Sum:         Sum{Arg: Ident{Name: "amount"}},
				PartitionBy: []Expr{Ident{Name: "country"}},
				OrderBy:     []OrderKey{{Expr: Ident{Name: "date"}}},
			}, Alias: "amount"},
			{Expr: Ident{Name: "date"}},
		},
		From:    Subquery{Query: inner, Alias: "grouped"},
		OrderBy: []OrderKey{{Expr: Ident{Name: "date"}}},
	}

	assert.NoError(t, Validate(outer))

	// Partition key not produced by the subquery.
	outer.Items[1].Expr = Window{
		Sum:         Sum{Arg: Ident{Name: "amount"}},
		PartitionBy: []Expr{Ident{Name: "province"}},
		OrderBy:     []OrderKey{{Expr: Ident{Name: "date"}}},
	}
	err := Validate(outer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown identifier "province" in window partition`)
}

func TestValidate_WindowNeedsOrder(t *testing.T) {
	inner := Select{
		Items: []SelectItem{{Expr: Column{Table: "c", Name: "amount"}, Alias: "amount"}},
		From:  casesTable(),
	}
	outer := Select{
		Items: []SelectItem{{Expr: Window{Sum: Sum{Arg: Ident{Name: "amount"}}}, Alias: "amount"}},
		From:  Subquery{Query: inner, Alias: "grouped"},
	}

	err := Validate(outer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window has no ORDER BY")
}

func TestIsPlainIdent(t *testing.T) {
	assert.True(t, IsPlainIdent("country_id"))
	assert.True(t, IsPlainIdent("_"))
	assert.False(t, IsPlainIdent("Country"))
	assert.False(t, IsPlainIdent("1abc"))
	assert.False(t, IsPlainIdent(`a"b`))
	assert.False(t, IsPlainIdent(""))
}
