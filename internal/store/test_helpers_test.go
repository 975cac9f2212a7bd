package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/model"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testPlaces are the ids created by seedPlaces.
type testPlaces struct {
	spain, france   int64
	madrid, catalon int64
}

// seedPlaces creates Spain (with Madrid and Cataluña) and France.
func seedPlaces(t *testing.T, s *Store) testPlaces {
	t.Helper()
	ctx := context.Background()

	var p testPlaces
	var err error

	p.spain, err = s.CreateCountry(ctx, model.Country{Name: "Spain", Alpha2: "es", Alpha3: "esp", Lat: 40.4, Lng: -3.7})
	require.NoError(t, err)
	p.france, err = s.CreateCountry(ctx, model.Country{Name: "France", Alpha2: "FR", Alpha3: "FRA", Lat: 46.2, Lng: 2.2})
	require.NoError(t, err)

	p.madrid, err = s.CreateProvince(ctx, model.Province{Name: "Madrid", Code: "MD", CountryID: p.spain})
	require.NoError(t, err)
	p.catalon, err = s.CreateProvince(ctx, model.Province{Name: "Cataluña", Code: "CT", CountryID: p.spain})
	require.NoError(t, err)

	return p
}

// day returns 2021-01-<d> in UTC.
func day(d int) time.Time {
	return time.Date(2021, time.January, d, 0, 0, 0, 0, time.UTC)
}

func mustUpsert(t *testing.T, s *Store, c model.Case) {
	t.Helper()
	require.NoError(t, s.UpsertCase(context.Background(), c, model.ConflictReplace))
}

func int64Ptr(v int64) *int64 { return &v }
