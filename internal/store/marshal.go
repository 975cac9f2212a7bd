package store

import (
	"database/sql"
	"strings"

	"github.com/roach88/coviddata/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullInt64 converts an optional id to a driver value; nil stores NULL.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// lookupValue puts a place lookup value into its stored form: names NFC and
// trimmed, ISO codes upper-case.
func lookupValue(prop model.PlaceProperty, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	switch prop {
	case model.PropertyName:
		return model.NormalizeName(s)
	case model.PropertyAlpha2, model.PropertyAlpha3:
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return s
}

func scanCountry(row rowScanner) (model.Country, error) {
	var (
		c      model.Country
		alpha3 sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Alpha2, &alpha3, &c.Lat, &c.Lng); err != nil {
		return model.Country{}, err
	}
	c.Alpha3 = alpha3.String
	return c, nil
}

func scanProvince(row rowScanner) (model.Province, error) {
	var (
		p    model.Province
		code sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Lat, &p.Lng, &code, &p.CountryID); err != nil {
		return model.Province{}, err
	}
	p.Code = code.String
	return p, nil
}

func scanCounty(row rowScanner) (model.County, error) {
	var (
		c    model.County
		code sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Lat, &c.Lng, &code, &c.ProvinceID); err != nil {
		return model.County{}, err
	}
	c.Code = code.String
	return c, nil
}
