package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(Params{})
	require.NoError(t, err)

	assert.Equal(t, model.CaseType(""), f.CaseType)
	assert.Nil(t, f.Date)
	assert.Nil(t, f.Limit)
	assert.Nil(t, f.ProvinceID)
	assert.Empty(t, f.CountryIDs)
	assert.Empty(t, f.Aggregations)
	assert.Empty(t, f.Sort)
	assert.Equal(t, ResultCases, f.Result)
	assert.False(t, f.Result.Cumulative())
}

func TestParse_Full(t *testing.T) {
	f, err := Parse(Params{
		Type:       "Confirmed",
		DateGTE:    "01-01-2021",
		DateLTE:    "31-01-2021",
		Countries:  []string{"3", "7"},
		Province:   "12",
		Agg:        []string{"date", "COUNTRY"},
		Sort:       []string{"-date", "country"},
		Limit:      "50",
		ResultType: "cummulativecountry",
		Normalize:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.CaseConfirmed, f.CaseType)
	require.IsType(t, Range{}, f.Date)
	r := f.Date.(Range)
	assert.Equal(t, day(2021, 1, 1), *r.From)
	assert.Equal(t, day(2021, 1, 31), *r.To)
	assert.Equal(t, []int64{3, 7}, f.CountryIDs)
	require.NotNil(t, f.ProvinceID)
	assert.Equal(t, int64(12), *f.ProvinceID)
	assert.Equal(t, []Aggregation{AggDate, AggCountry}, f.Aggregations)
	assert.Equal(t, []Sort{{Field: "date", Desc: true}, {Field: "country"}}, f.Sort)
	require.NotNil(t, f.Limit)
	assert.Equal(t, 50, *f.Limit)
	assert.Equal(t, ResultCumulativeCountry, f.Result)
	assert.True(t, f.Result.Cumulative())
	assert.True(t, f.Normalize)
	assert.True(t, f.HasAggregation(AggCountry))
	assert.False(t, f.HasAggregation(AggProvince))
}

func TestParse_ExactDate(t *testing.T) {
	f, err := Parse(Params{Date: "09-03-2021"})
	require.NoError(t, err)
	assert.Equal(t, Exact{Day: day(2021, 3, 9)}, f.Date)
}

func TestParse_OpenRange(t *testing.T) {
	f, err := Parse(Params{DateLTE: "09-03-2021"})
	require.NoError(t, err)

	r, ok := f.Date.(Range)
	require.True(t, ok)
	assert.Nil(t, r.From)
	assert.Equal(t, day(2021, 3, 9), *r.To)
}

func TestParse_LimitZero(t *testing.T) {
	f, err := Parse(Params{Limit: "0"})
	require.NoError(t, err)
	require.NotNil(t, f.Limit)
	assert.Equal(t, 0, *f.Limit)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		value  string
	}{
		{"bad case type", Params{Type: "sick"}, "sick"},
		{"bad date", Params{Date: "2021-01-01"}, "2021-01-01"},
		{"bad range bound", Params{DateGTE: "32-01-2021"}, "32-01-2021"},
		{"date with range", Params{Date: "01-01-2021", DateLTE: "02-01-2021"}, "01-01-2021"},
		{"inverted range", Params{DateGTE: "02-01-2021", DateLTE: "01-01-2021"}, "02-01-2021"},
		{"bad aggregation", Params{Agg: []string{"county"}}, "county"},
		{"duplicate aggregation", Params{Agg: []string{"date", "date"}}, "date"},
		{"bad sort", Params{Sort: []string{"-badcolumn"}}, "-badcolumn"},
		{"duplicate sort", Params{Sort: []string{"date", "-date"}}, "-date"},
		{"non-numeric limit", Params{Limit: "ten"}, "ten"},
		{"negative limit", Params{Limit: "-1"}, "-1"},
		{"bad country id", Params{Countries: []string{"ES"}}, "ES"},
		{"zero province id", Params{Province: "0"}, "0"},
		{"bad result type", Params{ResultType: "daily"}, "daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.params)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err), "want validation error, got %v", err)

			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.value, ae.Value)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestParseSort(t *testing.T) {
	asc, err := ParseSort("date")
	require.NoError(t, err)
	desc, err := ParseSort("-date")
	require.NoError(t, err)

	assert.False(t, asc.Desc)
	assert.True(t, desc.Desc)
	assert.Equal(t, asc.Field, desc.Field)
	assert.Equal(t, "-date", desc.String())
	assert.Equal(t, "date", asc.String())

	_, err = ParseSort("-")
	assert.Error(t, err)
}
