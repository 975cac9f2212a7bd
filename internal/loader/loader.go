// Package loader imports case counts from CSV files into the store.
//
// The expected header is
//
//	type,amount,date,country,alpha2,alpha3,province,lat,lng
//
// in any column order. type, amount, date, country and alpha2 are required;
// the rest may be missing or empty. Dates are YYYY-MM-DD. lat/lng locate the
// province when one is given and the country otherwise.
//
// Countries and provinces are created on first sight. Cases are upserted in
// batches with the chosen model.ConflictStrategy, one transaction per batch.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
	"github.com/roach88/coviddata/internal/store"
)

// DefaultBatchSize is the number of cases written per transaction.
const DefaultBatchSize = 500

const opLoad = "load cases"

var requiredColumns = []string{"type", "amount", "date", "country", "alpha2"}

// Loader writes CSV rows to a store.
type Loader struct {
	store  *store.Store
	ids    BatchIDGenerator
	logger *slog.Logger

	// BatchSize caps the cases per transaction. Values < 1 mean DefaultBatchSize.
	BatchSize int
}

// New creates a Loader. A nil ids uses UUIDv7Generator; a nil logger uses
// slog.Default().
func New(s *store.Store, ids BatchIDGenerator, logger *slog.Logger) *Loader {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: s, ids: ids, logger: logger, BatchSize: DefaultBatchSize}
}

// Result summarizes one import.
type Result struct {
	// Rows is the number of data rows read.
	Rows int `json:"rows"`

	// Batches are the ids of the committed batches, in write order.
	Batches []string `json:"batches"`

	// Countries and Provinces count the distinct places referenced.
	Countries int `json:"countries"`
	Provinces int `json:"provinces"`
}

// LoadFile imports the CSV file at path.
func (l *Loader) LoadFile(ctx context.Context, path string, strategy model.ConflictStrategy) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(ctx, f, strategy)
}

// Load imports CSV data from r.
//
// Rows are validated as they are read. The first bad row stops the import
// with a validation error naming its line; batches committed before it stay.
func (l *Loader) Load(ctx context.Context, r io.Reader, strategy model.ConflictStrategy) (Result, error) {
	if _, ok := model.ParseConflictStrategy(string(strategy)); !ok {
		return Result{}, apperr.Validation(opLoad, string(strategy), "unknown conflict strategy %q", strategy)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{Batches: []string{}}, nil
	}
	if err != nil {
		return Result{}, apperr.Validation(opLoad, "", "read header: %v", err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return Result{}, err
	}

	size := l.BatchSize
	if size < 1 {
		size = DefaultBatchSize
	}

	res := Result{Batches: []string{}}
	places := newPlaceCache(l.store)
	batch := make([]model.Case, 0, size)

	flush := func(line int) error {
		if len(batch) == 0 {
			return nil
		}
		id := l.ids.Generate()
		if err := l.store.UpsertCases(ctx, batch, strategy); err != nil {
			l.logger.Error("batch failed", "batch_id", id, "cases", len(batch), "line", line, "error", err)
			return err
		}
		l.logger.Info("batch loaded", "batch_id", id, "cases", len(batch), "line", line, "strategy", string(strategy))
		res.Batches = append(res.Batches, id)
		batch = batch[:0]
		return nil
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, apperr.Validation(opLoad, "", "read row: %v", err)
		}
		line, _ = reader.FieldPos(0)

		parsed, err := parseRow(cols, record, line)
		if err != nil {
			return res, err
		}

		c, err := places.resolve(ctx, parsed)
		if err != nil {
			return res, err
		}
		batch = append(batch, c)
		res.Rows++

		if len(batch) == size {
			if err := flush(line); err != nil {
				return res, err
			}
		}
	}

	if err := flush(line); err != nil {
		return res, err
	}

	res.Countries = len(places.countries)
	res.Provinces = len(places.provinces)
	return res, nil
}

// columns maps lower-cased header names to record positions.
type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func indexHeader(header []string) (columns, error) {
	cols := columns{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[name] = i
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, apperr.Validation(opLoad, req, "header is missing column %q", req)
		}
	}
	return cols, nil
}

// row is one parsed CSV line.
type row struct {
	country  model.Country
	province string
	lat, lng float64
	c        model.Case
}

func parseRow(cols columns, record []string, line int) (row, error) {
	var r row

	raw := cols.get(record, "type")
	t, ok := model.ParseCaseType(raw)
	if !ok {
		return row{}, apperr.Validation(opLoad, raw, "line %d: case type %q not valid", line, raw)
	}
	r.c.Type = t

	raw = cols.get(record, "amount")
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount < 0 {
		return row{}, apperr.Validation(opLoad, raw, "line %d: amount %q is not a non-negative integer", line, raw)
	}
	r.c.Amount = amount

	raw = cols.get(record, "date")
	date, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return row{}, apperr.Validation(opLoad, raw, "line %d: date %q is not in YYYY-MM-DD format", line, raw)
	}
	r.c.Date = date

	for _, name := range []string{"lat", "lng"} {
		raw = cols.get(record, name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return row{}, apperr.Validation(opLoad, raw, "line %d: %s %q is not a number", line, name, raw)
		}
		if name == "lat" {
			r.lat = v
		} else {
			r.lng = v
		}
	}

	r.country = model.Country{
		Name:   cols.get(record, "country"),
		Alpha2: cols.get(record, "alpha2"),
		Alpha3: cols.get(record, "alpha3"),
	}
	r.province = cols.get(record, "province")
	if r.province == "" {
		r.country.Lat, r.country.Lng = r.lat, r.lng
	}

	return r, nil
}

// placeCache remembers place ids resolved during one import.
type placeCache struct {
	store     *store.Store
	countries map[string]int64
	provinces map[provinceKey]int64
}

type provinceKey struct {
	countryID int64
	name      string
}

func newPlaceCache(s *store.Store) *placeCache {
	return &placeCache{
		store:     s,
		countries: map[string]int64{},
		provinces: map[provinceKey]int64{},
	}
}

// resolve fills the place ids of r's case, creating places as needed.
func (pc *placeCache) resolve(ctx context.Context, r row) (model.Case, error) {
	c := r.c

	alpha2 := strings.ToUpper(r.country.Alpha2)
	countryID, ok := pc.countries[alpha2]
	if !ok {
		id, err := pc.store.EnsureCountry(ctx, r.country)
		if err != nil {
			return model.Case{}, err
		}
		pc.countries[alpha2] = id
		countryID = id
	}
	c.CountryID = countryID

	if r.province == "" {
		return c, nil
	}

	key := provinceKey{countryID: countryID, name: model.NormalizeName(r.province)}
	provinceID, ok := pc.provinces[key]
	if !ok {
		id, err := pc.store.EnsureProvince(ctx, model.Province{
			Name:      r.province,
			Lat:       r.lat,
			Lng:       r.lng,
			CountryID: countryID,
		})
		if err != nil {
			return model.Case{}, err
		}
		pc.provinces[key] = id
		provinceID = id
	}
	c.ProvinceID = &provinceID

	return c, nil
}
