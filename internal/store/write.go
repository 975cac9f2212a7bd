package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
)

// The conflict target must list the expressions of idx_cases_key exactly.
const upsertCaseSQL = `
	INSERT INTO cases (type, amount, date, country_id, province_id, county_id)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(type, date, country_id, COALESCE(province_id, -1), COALESCE(county_id, -1))
	DO UPDATE SET amount = `

func upsertSQL(strategy model.ConflictStrategy) (string, error) {
	switch strategy {
	case model.ConflictReplace:
		return upsertCaseSQL + "excluded.amount", nil
	case model.ConflictAdd:
		return upsertCaseSQL + "cases.amount + excluded.amount", nil
	default:
		return "", apperr.Validation("upsert case", string(strategy), "unknown conflict strategy %q", strategy)
	}
}

// UpsertCase inserts c, or resolves a key collision with strategy: replace
// overwrites the stored amount, add increases it by c.Amount.
func (s *Store) UpsertCase(ctx context.Context, c model.Case, strategy model.ConflictStrategy) error {
	return s.UpsertCases(ctx, []model.Case{c}, strategy)
}

// UpsertCases upserts every case in one transaction. Every case is
// validated before the transaction starts; one failure writes nothing.
func (s *Store) UpsertCases(ctx context.Context, cases []model.Case, strategy model.ConflictStrategy) error {
	query, err := upsertSQL(strategy)
	if err != nil {
		return err
	}
	for _, c := range cases {
		if err := model.Validate(c); err != nil {
			return err
		}
	}

	err = s.withTx(ctx, func(q Querier) error {
		for i, c := range cases {
			_, err := q.ExecContext(ctx, query,
				string(c.Type),
				c.Amount,
				c.Day(),
				c.CountryID,
				nullInt64(c.ProvinceID),
				nullInt64(c.CountyID),
			)
			if err != nil {
				return fmt.Errorf("case %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperr.DataLayer("upsert case", err)
	}

	s.logger.Debug("cases upserted", "count", len(cases), "strategy", string(strategy))
	return nil
}

// CreateCountry inserts a country and returns its id. The name is
// normalized and the ISO codes upper-cased before validation.
func (s *Store) CreateCountry(ctx context.Context, c model.Country) (id int64, err error) {
	c = prepareCountry(c)
	if err := model.Validate(c); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(q Querier) error {
		id, err = insertCountry(ctx, q, c)
		return err
	})
	if err != nil {
		return 0, apperr.DataLayer("create country", err)
	}
	return id, nil
}

// CreateProvince inserts a province and returns its id.
func (s *Store) CreateProvince(ctx context.Context, p model.Province) (id int64, err error) {
	p.Name = model.NormalizeName(p.Name)
	if err := model.Validate(p); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(q Querier) error {
		id, err = insertProvince(ctx, q, p)
		return err
	})
	if err != nil {
		return 0, apperr.DataLayer("create province", err)
	}
	return id, nil
}

// CreateCounty inserts a county and returns its id.
func (s *Store) CreateCounty(ctx context.Context, c model.County) (id int64, err error) {
	c.Name = model.NormalizeName(c.Name)
	if err := model.Validate(c); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(q Querier) error {
		res, err := q.ExecContext(ctx,
			`INSERT INTO counties (name, lat, lng, code, province_id) VALUES (?, ?, ?, ?, ?)`,
			c.Name, c.Lat, c.Lng, nullString(c.Code), c.ProvinceID)
		if err != nil {
			return fmt.Errorf("insert county: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, apperr.DataLayer("create county", err)
	}
	return id, nil
}

// EnsureCountry returns the id of the country with c.Alpha2, creating it
// from c when absent.
func (s *Store) EnsureCountry(ctx context.Context, c model.Country) (id int64, err error) {
	c = prepareCountry(c)
	if err := model.Validate(c); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(q Querier) error {
		existing, found, err := countryBy(ctx, q, model.PropertyAlpha2, c.Alpha2)
		if err != nil {
			return err
		}
		if found {
			id = existing.ID
			return nil
		}
		id, err = insertCountry(ctx, q, c)
		return err
	})
	if err != nil {
		return 0, apperr.DataLayer("ensure country", err)
	}
	return id, nil
}

// EnsureProvince returns the id of the province named p.Name in
// p.CountryID, creating it from p when absent.
func (s *Store) EnsureProvince(ctx context.Context, p model.Province) (id int64, err error) {
	p.Name = model.NormalizeName(p.Name)
	if err := model.Validate(p); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(q Querier) error {
		existing, found, err := provinceByName(ctx, q, p.CountryID, p.Name)
		if err != nil {
			return err
		}
		if found {
			id = existing.ID
			return nil
		}
		id, err = insertProvince(ctx, q, p)
		return err
	})
	if err != nil {
		return 0, apperr.DataLayer("ensure province", err)
	}
	return id, nil
}

func prepareCountry(c model.Country) model.Country {
	c.Name = model.NormalizeName(c.Name)
	c.Alpha2 = strings.ToUpper(strings.TrimSpace(c.Alpha2))
	c.Alpha3 = strings.ToUpper(strings.TrimSpace(c.Alpha3))
	return c
}

func insertCountry(ctx context.Context, q Querier, c model.Country) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO countries (name, alpha2, alpha3, lat, lng) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Alpha2, nullString(c.Alpha3), c.Lat, c.Lng)
	if err != nil {
		return 0, fmt.Errorf("insert country: %w", err)
	}
	return res.LastInsertId()
}

func insertProvince(ctx context.Context, q Querier, p model.Province) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO provinces (name, lat, lng, code, country_id) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Lat, p.Lng, nullString(p.Code), p.CountryID)
	if err != nil {
		return 0, fmt.Errorf("insert province: %w", err)
	}
	return res.LastInsertId()
}
