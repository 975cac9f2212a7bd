package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/casequery"
	"github.com/roach88/coviddata/internal/filter"
	"github.com/roach88/coviddata/internal/queryir"
	"github.com/roach88/coviddata/internal/querysql"
	"github.com/roach88/coviddata/internal/rowmap"
)

// Query builds the statement for f (plain or cumulative, per f.Result),
// executes it and maps the rows. Amounts are replaced by their share of the
// total when f.Normalize is set.
//
// Build failures are validation errors and never reach the database.
func (s *Store) Query(ctx context.Context, f filter.Filter) ([]rowmap.Record, error) {
	stmt, err := casequery.Statement(f)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt, f.Normalize)
}

// Cases runs the plain case query for f.
func (s *Store) Cases(ctx context.Context, f filter.Filter) ([]rowmap.Record, error) {
	stmt, err := casequery.Cases(f)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt, f.Normalize)
}

// Cumulative runs the cumulative query of type r for f.
func (s *Store) Cumulative(ctx context.Context, r filter.ResultType, f filter.Filter) ([]rowmap.Record, error) {
	stmt, err := casequery.Cumulative(r, f)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, stmt, f.Normalize)
}

func (s *Store) run(ctx context.Context, stmt querysql.Statement, normalize bool) ([]rowmap.Record, error) {
	records, err := s.Apply(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if !normalize {
		return records, nil
	}
	return rowmap.Normalize(records, "amount")
}

// Apply executes stmt with its params bound positionally and maps the result
// rows to records named by stmt.Columns.
//
// Returns an empty (non-nil) slice when no rows match.
func (s *Store) Apply(ctx context.Context, stmt querysql.Statement) ([]rowmap.Record, error) {
	s.logger.Debug("apply statement", "sql", stmt.SQL(), "params", len(stmt.Params))

	var records []rowmap.Record
	err := s.withConn(ctx, func(q Querier) error {
		rows, err := q.QueryContext(ctx, stmt.SQL(), stmt.Params...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		records, err = MapRows(rows, stmt.Columns)
		return err
	})
	if err != nil {
		return nil, apperr.DataLayer("apply statement", err)
	}

	s.logger.Debug("statement applied", "rows", len(records))
	return records, nil
}

// MapRows scans every row of rows and names the fields after columns. A nil
// columns uses the driver's column names. rows is closed on return.
//
// Text values come back as string, never []byte. A result set whose width
// differs from len(columns) fails with rowmap.ErrRowShape.
func MapRows(rows *sql.Rows, columns []string) ([]rowmap.Record, error) {
	defer rows.Close()

	driverCols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if columns == nil {
		columns = driverCols
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(driverCols))
		dest := make([]any, len(driverCols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return rowmap.Map(data, columns)
}

// TableColumns returns the column names of table ordered by their position
// in the table definition. An unknown table is a validation error.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	var columns []string
	err := s.withConn(ctx, func(q Querier) error {
		var err error
		columns, err = tableColumns(ctx, q, table)
		return err
	})
	if err != nil {
		return nil, apperr.DataLayer("table columns", err)
	}
	return columns, nil
}

// MapTable returns every row of table as records keyed by its introspected
// column names, in rowid order.
func (s *Store) MapTable(ctx context.Context, table string) ([]rowmap.Record, error) {
	var records []rowmap.Record
	err := s.withConn(ctx, func(q Querier) error {
		columns, err := tableColumns(ctx, q, table)
		if err != nil {
			return err
		}

		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = querysql.QuoteIdent(c)
		}
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
			strings.Join(quoted, ", "), querysql.QuoteIdent(table))

		rows, err := q.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query %s: %w", table, err)
		}
		records, err = MapRows(rows, columns)
		return err
	})
	if err != nil {
		return nil, apperr.DataLayer("map table", err)
	}
	return records, nil
}

func tableColumns(ctx context.Context, q Querier, table string) ([]string, error) {
	if !queryir.IsPlainIdent(table) {
		return nil, apperr.Validation("table columns", table, "invalid table name %q", table)
	}

	rows, err := q.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	columns := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column names: %w", err)
	}

	if len(columns) == 0 {
		return nil, apperr.Validation("table columns", table, "unknown table %q", table)
	}
	return columns, nil
}
