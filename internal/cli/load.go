package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/loader"
	"github.com/roach88/coviddata/internal/model"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Strategy string

	// BatchIDs allows overriding the batch id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	BatchIDs loader.BatchIDGenerator
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <csv-file>",
		Short: "Import case counts from a CSV file",
		Long: `Import case counts from a CSV file into the database.

The header names the columns, in any order:
  type,amount,date,country,alpha2,alpha3,province,lat,lng

province, alpha3, lat and lng are optional. Dates are YYYY-MM-DD.
Countries and provinces are created on first sight.

A case already stored for the same type, date and place is replaced by
default; --strategy add sums the amounts instead.

Example:
  covid load --db ./covid.db cases.csv
  covid load --strategy add daily.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadCases(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "conflict strategy replace|add (default from config)")

	return cmd
}

func loadCases(opts *LoadOptions, path string, cmd *cobra.Command) error {
	strategy := opts.Config.Strategy()
	if opts.Strategy != "" {
		s, ok := model.ParseConflictStrategy(opts.Strategy)
		if !ok {
			return classify("invalid strategy",
				apperr.Validation("load", opts.Strategy, "unknown conflict strategy %q", opts.Strategy))
		}
		strategy = s
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

	l := loader.New(st, opts.BatchIDs, nil)
	l.BatchSize = opts.Config.BatchSize

	res, err := l.LoadFile(ctx, path, strategy)
	if err != nil {
		if !apperr.IsValidation(err) && !apperr.IsDataLayer(err) {
			return WrapExitError(ExitCommandError, "failed to read CSV", err)
		}
		return classify("load failed", err)
	}

	out := opts.formatter(cmd)
	if opts.Format == "json" {
		return out.Success(res)
	}
	return out.Success(fmt.Sprintf("Loaded %d rows in %d batches (%d countries, %d provinces)",
		res.Rows, len(res.Batches), res.Countries, res.Provinces))
}
