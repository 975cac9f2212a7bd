package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/coviddata/internal/casequery"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	FilterFlags
}

// Explanation is the JSON payload of explain.
type Explanation struct {
	SQL     string   `json:"sql"`
	Params  []any    `json:"params"`
	Columns []string `json:"columns"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the SQL a query would run",
		Long: `Print the SQL statement and parameters built for a query without running it.

Takes the same flags as query. Place codes and names are still resolved
against the database.

Example:
  covid explain --type dead --agg country --sort -amount --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd)
		},
	}

	opts.FilterFlags.register(cmd)

	return cmd
}

func runExplain(opts *ExplainOptions, cmd *cobra.Command) error {
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
		return NewExitError(ExitCommandError, fmt.Sprintf("province %q not found: the query returns no rows", opts.Province))
	}

	stmt, err := casequery.Statement(f)
	if err != nil {
		return classify("invalid query", err)
	}

	if opts.Format == "json" {
		params := stmt.Params
		if params == nil {
			params = []any{}
		}
		return out.Success(Explanation{SQL: stmt.SQL(), Params: params, Columns: stmt.Columns})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, stmt.SQL())
	fmt.Fprintf(w, "-- params: %v\n", stmt.Params)
	return nil
}
