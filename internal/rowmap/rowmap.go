// Package rowmap converts positional result rows into field-named records.
//
// A Record keeps the column order of the query that produced it, so JSON
// output and text tables list fields in SELECT order rather than map order.
package rowmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRowShape reports a row whose width differs from the column count.
// It signals a bug in the caller (wrong column list for the query) and is
// never worth retrying.
var ErrRowShape = errors.New("row width does not match column count")

// Record is one result row with named fields in column order.
type Record struct {
	columns []string
	values  []any
}

// NewRecord pairs columns with values. Both slices are used as given.
func NewRecord(columns []string, values []any) (Record, error) {
	if len(columns) != len(values) {
		return Record{}, fmt.Errorf("%w: %d values for %d columns", ErrRowShape, len(values), len(columns))
	}
	return Record{columns: columns, values: values}, nil
}

// Columns returns the field names in order.
func (r Record) Columns() []string { return r.columns }

// Values returns the field values in column order.
func (r Record) Values() []any { return r.values }

// Len returns the number of fields.
func (r Record) Len() int { return len(r.columns) }

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Map returns the record as an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(r.values[i]))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", c, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue renders driver byte slices as text instead of base64.
func jsonValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Map converts rows into records using columns as the field names.
//
// Returns an empty (non-nil) slice for zero rows. Returns ErrRowShape if any
// row's width differs from len(columns).
func Map(rows [][]any, columns []string) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := NewRecord(columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Normalize returns copies of records with column replaced by its share of
// the column total, as a float64. A zero total yields zero shares.
func Normalize(records []Record, column string) ([]Record, error) {
	var total float64
	nums := make([]float64, len(records))
	for i, rec := range records {
		v, ok := rec.Get(column)
		if !ok {
			return nil, fmt.Errorf("normalize: record %d has no column %q", i, column)
		}
		n, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("normalize: record %d: %w", i, err)
		}
		nums[i] = n
		total += n
	}

	out := make([]Record, len(records))
	for i, rec := range records {
		values := make([]any, len(rec.values))
		copy(values, rec.values)
		for j, c := range rec.columns {
			if c != column {
				continue
			}
			if total == 0 {
				values[j] = 0.0
			} else {
				values[j] = nums[i] / total
			}
		}
		out[i] = Record{columns: rec.columns, values: values}
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
