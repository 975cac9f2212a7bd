package cli

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/store"
)

// FilterFlags are the request parameters shared by query and explain.
// Places are given by name or code and resolved to ids through the store.
type FilterFlags struct {
	Type      string
	Date      string
	DateGTE   string
	DateLTE   string
	Countries []string // alpha2 codes
	Province  string   // province name
	Agg       []string
	Sort      []string
	Limit     string
	Result    string
	Normalize bool
}

func (ff *FilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.Type, "type", "", "case type (confirmed|dead|recovered)")
	cmd.Flags().StringVar(&ff.Date, "date", "", "exact day, DD-MM-YYYY")
	cmd.Flags().StringVar(&ff.DateGTE, "date-gte", "", "first day of range, DD-MM-YYYY")
	cmd.Flags().StringVar(&ff.DateLTE, "date-lte", "", "last day of range, DD-MM-YYYY")
	cmd.Flags().StringSliceVar(&ff.Countries, "country", nil, "country alpha2 code (repeatable)")
	cmd.Flags().StringVar(&ff.Province, "province", "", "province name (needs exactly one --country)")
	cmd.Flags().StringSliceVar(&ff.Agg, "agg", nil, "group by date|country|province|type (repeatable)")
	cmd.Flags().StringSliceVar(&ff.Sort, "sort", nil, "sort field, prefix - for descending (repeatable)")
	cmd.Flags().StringVar(&ff.Limit, "limit", "", "maximum number of rows")
	cmd.Flags().StringVar(&ff.Result, "result", "", "cumulative result type (cummulativeDate|cummulativeDateCountry|cummulativeCountry|cummulativeProvince)")
	cmd.Flags().BoolVar(&ff.Normalize, "normalize", false, "report amounts as a share of the total")
}

// resolve turns the flags into a Filter. found is false when a named
// province does not exist, in which case the result is empty by definition.
func (ff *FilterFlags) resolve(ctx context.Context, st *store.Store) (f filter.Filter, found bool, err error) {
	params := filter.Params{
		Type:       ff.Type,
		Date:       ff.Date,
		DateGTE:    ff.DateGTE,
		DateLTE:    ff.DateLTE,
		Agg:        ff.Agg,
		Sort:       ff.Sort,
		Limit:      ff.Limit,
		ResultType: ff.Result,
		Normalize:  ff.Normalize,
	}

	var countryIDs []int64
	if len(ff.Countries) > 0 {
		countryIDs, err = st.CountryIDsByAlpha2(ctx, ff.Countries)
		if err != nil {
			return filter.Filter{}, false, err
		}
		for _, id := range countryIDs {
			params.Countries = append(params.Countries, strconv.FormatInt(id, 10))
		}
	}

	if ff.Province != "" {
		if len(countryIDs) != 1 {
			return filter.Filter{}, false, apperr.Validation("resolve province", ff.Province,
				"province %q needs exactly one --country", ff.Province)
		}
		p, ok, err := st.ProvinceByName(ctx, countryIDs[0], ff.Province)
		if err != nil {
			return filter.Filter{}, false, err
		}
		if !ok {
			slog.Debug("province not found", "province", ff.Province, "country_id", countryIDs[0])
			return filter.Filter{}, false, nil
		}
		params.Province = strconv.FormatInt(p.ID, 10)
	}

	f, err = filter.Parse(params)
	if err != nil {
		return filter.Filter{}, false, err
	}
	return f, true, nil
}

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	FilterFlags
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query case counts",
		Long: `Query case counts with optional filters, grouping, sorting and limit.

Without --agg every matching case row is listed. With --agg amounts are
summed per group. --result selects a running total instead.

Example:
  covid query --type confirmed --date-gte 01-01-2021 --date-lte 31-01-2021 --agg date,country
  covid query --country ES --province Madrid --sort -date --limit 10
  covid query --country ES --result cummulativeDateCountry --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	opts.FilterFlags.register(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	out := opts.formatter(cmd)

	f, found, err := opts.FilterFlags.resolve(ctx, st)
	if err != nil {
		return classify("invalid query", err)
	}
	if !found {
		return out.Records(nil, nil)
	}

	records, err := st.Query(ctx, f)
	if err != nil {
		return classify("query failed", err)
	}
	out.VerboseLog("%d rows", len(records))

	return out.Records(records, nil)
}
