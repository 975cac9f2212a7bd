package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
)

const opParse = "parse filter"

// Params are the raw request parameters. Empty strings and nil slices mean
// "not given".
type Params struct {
	Type       string
	Date       string
	DateGTE    string
	DateLTE    string
	Countries  []string // numeric country ids
	Province   string   // numeric province id
	Agg        []string
	Sort       []string
	Limit      string
	ResultType string
	Normalize  bool
}

// Parse validates p and returns the typed Filter.
func Parse(p Params) (Filter, error) {
	var f Filter

	if p.Type != "" {
		t, ok := model.ParseCaseType(p.Type)
		if !ok {
			return Filter{}, apperr.Validation(opParse, p.Type, "case type %q not valid", p.Type)
		}
		f.CaseType = t
	}

	date, err := parseDateFilter(p.Date, p.DateGTE, p.DateLTE)
	if err != nil {
		return Filter{}, err
	}
	f.Date = date

	for _, raw := range p.Countries {
		id, err := parseID(raw, "country")
		if err != nil {
			return Filter{}, err
		}
		f.CountryIDs = append(f.CountryIDs, id)
	}

	if p.Province != "" {
		id, err := parseID(p.Province, "province")
		if err != nil {
			return Filter{}, err
		}
		f.ProvinceID = &id
	}

	for _, raw := range p.Agg {
		a, ok := ParseAggregation(raw)
		if !ok {
			return Filter{}, apperr.Validation(opParse, raw, "aggregation %q not valid", raw)
		}
		if f.HasAggregation(a) {
			return Filter{}, apperr.Validation(opParse, raw, "aggregation %q given twice", raw)
		}
		f.Aggregations = append(f.Aggregations, a)
	}

	seen := map[string]bool{}
	for _, raw := range p.Sort {
		s, err := ParseSort(raw)
		if err != nil {
			return Filter{}, err
		}
		if seen[s.Field] {
			return Filter{}, apperr.Validation(opParse, raw, "sort field %q given twice", raw)
		}
		seen[s.Field] = true
		f.Sort = append(f.Sort, s)
	}

	if p.Limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p.Limit))
		if err != nil || n < 0 {
			return Filter{}, apperr.Validation(opParse, p.Limit, "invalid limit value %q", p.Limit)
		}
		f.Limit = &n
	}

	if p.ResultType != "" {
		r, ok := parseResultType(p.ResultType)
		if !ok {
			return Filter{}, apperr.Validation(opParse, p.ResultType, "result type %q not valid", p.ResultType)
		}
		f.Result = r
	}

	f.Normalize = p.Normalize
	return f, nil
}

// ParseDate parses a DD-MM-YYYY date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(InputDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validation(opParse, s, "date %q is not in DD-MM-YYYY format", s)
	}
	return t, nil
}

// ParseSort parses "field" (ascending) or "-field" (descending) against SortFields.
func ParseSort(raw string) (Sort, error) {
	s := Sort{Field: raw}
	if strings.HasPrefix(raw, "-") {
		s = Sort{Field: raw[1:], Desc: true}
	}

	for _, known := range SortFields {
		if s.Field == known {
			return s, nil
		}
	}
	return Sort{}, apperr.Validation(opParse, raw, "sort field %q not valid", raw)
}

func parseDateFilter(exact, gte, lte string) (DateFilter, error) {
	if exact != "" {
		if gte != "" || lte != "" {
			return nil, apperr.Validation(opParse, exact, "date %q cannot be combined with a date range", exact)
		}
		day, err := ParseDate(exact)
		if err != nil {
			return nil, err
		}
		return Exact{Day: day}, nil
	}

	if gte == "" && lte == "" {
		return nil, nil
	}

	var r Range
	if gte != "" {
		from, err := ParseDate(gte)
		if err != nil {
			return nil, err
		}
		r.From = &from
	}
	if lte != "" {
		to, err := ParseDate(lte)
		if err != nil {
			return nil, err
		}
		r.To = &to
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return nil, apperr.Validation(opParse, gte, "date range starts %s after it ends %s", gte, lte)
	}
	return r, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(opParse, raw, "%s id %q not valid", what, raw)
	}
	return id, nil
}

func parseResultType(s string) (ResultType, bool) {
	for _, r := range ResultTypes {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}
