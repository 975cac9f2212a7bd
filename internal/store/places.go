package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
	"github.com/roach88/coviddata/internal/querysql"
	"github.com/roach88/coviddata/internal/rowmap"
)

const (
	countryColumns  = "id, name, alpha2, alpha3, lat, lng"
	provinceColumns = "id, name, lat, lng, code, country_id"
	countyColumns   = "id, name, lat, lng, code, province_id"
)

// placeColumn resolves kind and prop to a table and column. Both come from
// closed enumerations, so the names are safe to splice into SQL.
func placeColumn(kind model.PlaceKind, prop model.PlaceProperty) (table, column string, err error) {
	table = kind.Table()
	if table == "" {
		return "", "", apperr.Validation("place lookup", string(kind), "unknown place kind %q", kind)
	}
	if !kind.Supports(prop) {
		return "", "", apperr.Validation("place lookup", string(prop), "%s has no property %q", kind, prop)
	}
	return table, string(prop), nil
}

// PlaceExists reports whether a place of kind has prop equal to value.
func (s *Store) PlaceExists(ctx context.Context, kind model.PlaceKind, prop model.PlaceProperty, value any) (bool, error) {
	table, column, err := placeColumn(kind, prop)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.withConn(ctx, func(q Querier) error {
		query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", table, column)
		return q.QueryRowContext(ctx, query, lookupValue(prop, value)).Scan(&exists)
	})
	if err != nil {
		return false, apperr.DataLayer("place exists", err)
	}
	return exists, nil
}

// PlaceByProperty returns the first place of kind (lowest id) whose prop
// equals value, with every column of its table. found is false when no
// place matches.
func (s *Store) PlaceByProperty(ctx context.Context, kind model.PlaceKind, prop model.PlaceProperty, value any) (rec rowmap.Record, found bool, err error) {
	table, column, err := placeColumn(kind, prop)
	if err != nil {
		return rowmap.Record{}, false, err
	}

	err = s.withConn(ctx, func(q Querier) error {
		columns, err := tableColumns(ctx, q, table)
		if err != nil {
			return err
		}
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = querysql.QuoteIdent(c)
		}

		query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY id LIMIT 1",
			strings.Join(quoted, ", "), table, column)
		rows, err := q.QueryContext(ctx, query, lookupValue(prop, value))
		if err != nil {
			return fmt.Errorf("query %s: %w", table, err)
		}
		records, err := MapRows(rows, columns)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			rec, found = records[0], true
		}
		return nil
	})
	if err != nil {
		return rowmap.Record{}, false, apperr.DataLayer("place by property", err)
	}
	return rec, found, nil
}

// CountryByAlpha2 looks up a country by its ISO 3166-1 alpha-2 code.
func (s *Store) CountryByAlpha2(ctx context.Context, alpha2 string) (model.Country, bool, error) {
	return s.country(ctx, model.PropertyAlpha2, alpha2)
}

// CountryByAlpha3 looks up a country by its ISO 3166-1 alpha-3 code.
func (s *Store) CountryByAlpha3(ctx context.Context, alpha3 string) (model.Country, bool, error) {
	return s.country(ctx, model.PropertyAlpha3, alpha3)
}

// CountryByID looks up a country by id.
func (s *Store) CountryByID(ctx context.Context, id int64) (model.Country, bool, error) {
	return s.country(ctx, model.PropertyID, id)
}

func (s *Store) country(ctx context.Context, prop model.PlaceProperty, value any) (c model.Country, found bool, err error) {
	err = s.withConn(ctx, func(q Querier) error {
		c, found, err = countryBy(ctx, q, prop, value)
		return err
	})
	if err != nil {
		return model.Country{}, false, apperr.DataLayer("country lookup", err)
	}
	return c, found, nil
}

func countryBy(ctx context.Context, q Querier, prop model.PlaceProperty, value any) (model.Country, bool, error) {
	_, column, err := placeColumn(model.PlaceCountry, prop)
	if err != nil {
		return model.Country{}, false, err
	}
	query := fmt.Sprintf("SELECT %s FROM countries WHERE %s = ? ORDER BY id LIMIT 1", countryColumns, column)

	c, err := scanCountry(q.QueryRowContext(ctx, query, lookupValue(prop, value)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Country{}, false, nil
	}
	if err != nil {
		return model.Country{}, false, fmt.Errorf("scan country: %w", err)
	}
	return c, true, nil
}

// ProvinceByID looks up a province by id.
func (s *Store) ProvinceByID(ctx context.Context, id int64) (p model.Province, found bool, err error) {
	err = s.withConn(ctx, func(q Querier) error {
		p, found, err = scanOneProvince(q.QueryRowContext(ctx,
			"SELECT "+provinceColumns+" FROM provinces WHERE id = ?", id))
		return err
	})
	if err != nil {
		return model.Province{}, false, apperr.DataLayer("province lookup", err)
	}
	return p, found, nil
}

// ProvinceByName looks up a province of a country by name. The name is
// normalized before comparison.
func (s *Store) ProvinceByName(ctx context.Context, countryID int64, name string) (p model.Province, found bool, err error) {
	err = s.withConn(ctx, func(q Querier) error {
		p, found, err = provinceByName(ctx, q, countryID, name)
		return err
	})
	if err != nil {
		return model.Province{}, false, apperr.DataLayer("province lookup", err)
	}
	return p, found, nil
}

func provinceByName(ctx context.Context, q Querier, countryID int64, name string) (model.Province, bool, error) {
	return scanOneProvince(q.QueryRowContext(ctx,
		"SELECT "+provinceColumns+" FROM provinces WHERE country_id = ? AND name = ?",
		countryID, model.NormalizeName(name)))
}

func scanOneProvince(row *sql.Row) (model.Province, bool, error) {
	p, err := scanProvince(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Province{}, false, nil
	}
	if err != nil {
		return model.Province{}, false, fmt.Errorf("scan province: %w", err)
	}
	return p, true, nil
}

// CountyByID looks up a county by id.
func (s *Store) CountyByID(ctx context.Context, id int64) (c model.County, found bool, err error) {
	err = s.withConn(ctx, func(q Querier) error {
		row := q.QueryRowContext(ctx, "SELECT "+countyColumns+" FROM counties WHERE id = ?", id)
		c, err = scanCounty(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan county: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return model.County{}, false, apperr.DataLayer("county lookup", err)
	}
	return c, found, nil
}

// CountryIDsByAlpha2 resolves alpha-2 codes to country ids in the given
// order. An unknown code is a validation error naming it.
func (s *Store) CountryIDsByAlpha2(ctx context.Context, codes []string) ([]int64, error) {
	ids := make([]int64, 0, len(codes))
	err := s.withConn(ctx, func(q Querier) error {
		for _, code := range codes {
			c, found, err := countryBy(ctx, q, model.PropertyAlpha2, code)
			if err != nil {
				return err
			}
			if !found {
				return apperr.Validation("resolve countries", code, "unknown country code %q", code)
			}
			ids = append(ids, c.ID)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.DataLayer("resolve countries", err)
	}
	return ids, nil
}

// Countries returns every country ordered by name.
func (s *Store) Countries(ctx context.Context) ([]model.Country, error) {
	countries := []model.Country{}
	err := s.withConn(ctx, func(q Querier) error {
		rows, err := q.QueryContext(ctx, "SELECT "+countryColumns+" FROM countries ORDER BY name, id")
		if err != nil {
			return fmt.Errorf("query countries: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCountry(rows)
			if err != nil {
				return fmt.Errorf("scan country: %w", err)
			}
			countries = append(countries, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperr.DataLayer("list countries", err)
	}
	return countries, nil
}

// Provinces returns the provinces of a country ordered by name. A zero
// countryID lists every province.
func (s *Store) Provinces(ctx context.Context, countryID int64) ([]model.Province, error) {
	query := "SELECT " + provinceColumns + " FROM provinces"
	var args []any
	if countryID != 0 {
		query += " WHERE country_id = ?"
		args = append(args, countryID)
	}
	query += " ORDER BY name, id"

	provinces := []model.Province{}
	err := s.withConn(ctx, func(q Querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query provinces: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProvince(rows)
			if err != nil {
				return fmt.Errorf("scan province: %w", err)
			}
			provinces = append(provinces, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperr.DataLayer("list provinces", err)
	}
	return provinces, nil
}
