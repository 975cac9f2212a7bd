package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_ImplementsQuery(t *testing.T) {
	var q Query = Select{From: Table{Name: "cases", Alias: "c"}}
	assert.NotNil(t, q)

	// Sealed interface - can type switch exhaustively
	switch q.(type) {
	case Select:
		// Expected
	default:
		t.Fatal("unexpected type")
	}
}

func TestSelect_Columns(t *testing.T) {
	sel := Select{
		Items: []SelectItem{
			{Expr: Sum{Arg: Column{Table: "c", Name: "amount"}}, Alias: "amount"},
			{Expr: Column{Table: "c", Name: "date"}},
			{Expr: Ident{Name: "country"}},
		},
	}

	assert.Equal(t, []string{"amount", "date", "country"}, sel.Columns())
}

func TestSelectItem_NameWithoutAlias(t *testing.T) {
	// An aggregate without alias has no usable output name.
	item := SelectItem{Expr: Sum{Arg: Column{Table: "c", Name: "amount"}}}
	assert.Equal(t, "", item.Name())
}

func TestSealedTypes(t *testing.T) {
	exprs := []Expr{Column{}, Ident{}, Sum{}, Window{}}
	assert.Len(t, exprs, 4)

	sources := []Source{Table{}, Subquery{}}
	assert.Len(t, sources, 2)

	preds := []Predicate{Compare{}, In{}}
	assert.Len(t, preds, 2)
}
