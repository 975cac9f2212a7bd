package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/model"
	"github.com/roach88/coviddata/internal/store"
)

// SampleCSV is a small import covering two countries, one province and all
// three case types. Its data matches what SeedStore writes.
const SampleCSV = `type,amount,date,country,alpha2,alpha3,province,lat,lng
confirmed,10,2021-01-01,Spain,ES,ESP,,40.4,-3.7
confirmed,5,2021-01-01,France,FR,FRA,,46.2,2.2
confirmed,7,2021-01-02,Spain,ES,ESP,,40.4,-3.7
dead,1,2021-01-02,Spain,ES,ESP,,40.4,-3.7
recovered,2,2021-01-03,France,FR,FRA,,46.2,2.2
confirmed,3,2021-01-02,Spain,ES,ESP,Madrid,40.4,-3.7
`

// Seeded holds the place ids created by SeedStore.
type Seeded struct {
	Spain  int64
	France int64
	Madrid int64
}

// OpenStore opens a store in a temp dir, closed when the test ends.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "covid.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// SeedStore writes the SampleCSV data set into s through the store API.
func SeedStore(t *testing.T, s *store.Store) Seeded {
	t.Helper()
	ctx := context.Background()

	var ids Seeded
	var err error
	ids.Spain, err = s.EnsureCountry(ctx, model.Country{Name: "Spain", Alpha2: "ES", Alpha3: "ESP", Lat: 40.4, Lng: -3.7})
	require.NoError(t, err)
	ids.France, err = s.EnsureCountry(ctx, model.Country{Name: "France", Alpha2: "FR", Alpha3: "FRA", Lat: 46.2, Lng: 2.2})
	require.NoError(t, err)
	ids.Madrid, err = s.EnsureProvince(ctx, model.Province{Name: "Madrid", Lat: 40.4, Lng: -3.7, CountryID: ids.Spain})
	require.NoError(t, err)

	madrid := ids.Madrid
	cases := []model.Case{
		{Type: model.CaseConfirmed, Amount: 10, Date: Day(2021, 1, 1), CountryID: ids.Spain},
		{Type: model.CaseConfirmed, Amount: 5, Date: Day(2021, 1, 1), CountryID: ids.France},
		{Type: model.CaseConfirmed, Amount: 7, Date: Day(2021, 1, 2), CountryID: ids.Spain},
		{Type: model.CaseDead, Amount: 1, Date: Day(2021, 1, 2), CountryID: ids.Spain},
		{Type: model.CaseRecovered, Amount: 2, Date: Day(2021, 1, 3), CountryID: ids.France},
		{Type: model.CaseConfirmed, Amount: 3, Date: Day(2021, 1, 2), CountryID: ids.Spain, ProvinceID: &madrid},
	}
	require.NoError(t, s.UpsertCases(ctx, cases, model.ConflictReplace))

	return ids
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
