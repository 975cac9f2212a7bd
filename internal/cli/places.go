package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/coviddata/internal/rowmap"
)

// PlacesOptions holds flags for the places command.
type PlacesOptions struct {
	*RootOptions
	Country string
}

var placeTables = map[string]string{
	"countries": "countries",
	"provinces": "provinces",
}

// NewPlacesCommand creates the places command.
func NewPlacesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlacesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "places <countries|provinces>",
		Short: "List known countries or provinces",
		Long: `List every row of the countries or provinces table with all its columns.

Example:
  covid places countries
  covid places provinces --country ES --format json`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"countries", "provinces"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPlaces(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Country, "country", "", "only provinces of this alpha2 country")

	return cmd
}

func listPlaces(opts *PlacesOptions, kind string, cmd *cobra.Command) error {
	table, ok := placeTables[kind]
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown place kind %q: must be countries or provinces", kind))
	}
	if opts.Country != "" && table != "provinces" {
		return NewExitError(ExitCommandError, "--country only applies to provinces")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	columns, err := st.TableColumns(ctx, table)
	if err != nil {
		return classify("failed to list places", err)
	}
	records, err := st.MapTable(ctx, table)
	if err != nil {
		return classify("failed to list places", err)
	}

	if opts.Country != "" {
		ids, err := st.CountryIDsByAlpha2(ctx, []string{opts.Country})
		if err != nil {
			return classify("failed to list places", err)
		}
		records = withColumnValue(records, "country_id", ids[0])
	}

	return opts.formatter(cmd).Records(records, columns)
}

// withColumnValue keeps the records whose column equals want.
func withColumnValue(records []rowmap.Record, column string, want int64) []rowmap.Record {
	kept := make([]rowmap.Record, 0, len(records))
	for _, r := range records {
		if v, ok := r.Get(column); ok && v == want {
			kept = append(kept, r)
		}
	}
	return kept
}
