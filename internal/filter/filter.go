// Package filter turns raw request parameters into a validated, typed Filter.
//
// Every parse failure is an apperr validation error naming the bad value, and
// it happens before any query is built.
package filter

import (
	"strings"
	"time"

	"github.com/roach88/coviddata/internal/model"
)

// InputDateLayout is the day-month-year format accepted for date parameters.
const InputDateLayout = "02-01-2006"

// Aggregation is a grouping dimension.
type Aggregation string

const (
	AggDate     Aggregation = "date"
	AggCountry  Aggregation = "country"
	AggProvince Aggregation = "province"
	AggType     Aggregation = "type"
)

// Aggregations lists every dimension.
var Aggregations = []Aggregation{AggDate, AggCountry, AggProvince, AggType}

// ParseAggregation matches s case-insensitively.
func ParseAggregation(s string) (Aggregation, bool) {
	for _, a := range Aggregations {
		if strings.EqualFold(s, string(a)) {
			return a, true
		}
	}
	return "", false
}

// SortFields are the output names a sort entry may reference. Whether a
// field is present in a particular result is checked when the query is built.
var SortFields = []string{"amount", "type", "date", "country", "province"}

// Sort is one ORDER BY entry.
type Sort struct {
	Field string
	Desc  bool
}

// String renders the entry in request form ("-date" / "date").
func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// ResultType selects between the plain case query and the cumulative variants.
type ResultType string

const (
	ResultCases                 ResultType = ""
	ResultCumulativeDate        ResultType = "cummulativeDate"
	ResultCumulativeDateCountry ResultType = "cummulativeDateCountry"
	ResultCumulativeCountry     ResultType = "cummulativeCountry"
	ResultCumulativeProvince    ResultType = "cummulativeProvince"
)

// ResultTypes lists the cumulative result types.
var ResultTypes = []ResultType{
	ResultCumulativeDate,
	ResultCumulativeDateCountry,
	ResultCumulativeCountry,
	ResultCumulativeProvince,
}

// Cumulative reports whether r is one of the windowed variants.
func (r ResultType) Cumulative() bool {
	return r != ResultCases
}

// DateFilter restricts case dates.
//
// This is a sealed interface: Exact or Range. A nil DateFilter means no
// date restriction.
type DateFilter interface {
	dateFilter()
}

// Exact matches a single day.
type Exact struct {
	Day time.Time
}

func (Exact) dateFilter() {}

// Range matches days between From and To, both inclusive. Either bound may be nil.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (Range) dateFilter() {}

// Filter is the typed, validated form of a case request.
type Filter struct {
	// CaseType restricts the case type; empty means all types.
	CaseType model.CaseType

	// Date restricts case dates; nil means all dates.
	Date DateFilter

	// CountryIDs restricts to these countries; empty means all countries.
	CountryIDs []int64

	// ProvinceID restricts to one province.
	ProvinceID *int64

	// Aggregations are the GROUP BY dimensions in request order.
	Aggregations []Aggregation

	// Sort entries in request order.
	Sort []Sort

	// Limit caps the row count; nil means no limit.
	Limit *int

	// Result selects the plain or a cumulative query.
	Result ResultType

	// Normalize replaces amounts by their share of the total.
	Normalize bool
}

// HasAggregation reports whether a is requested.
func (f Filter) HasAggregation(a Aggregation) bool {
	for _, x := range f.Aggregations {
		if x == a {
			return true
		}
	}
	return false
}
