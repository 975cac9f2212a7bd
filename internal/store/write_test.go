package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
)

func storedAmount(t *testing.T, s *Store) (count int, amount int64) {
	t.Helper()
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM cases`).Scan(&count, &amount)
	require.NoError(t, err)
	return count, amount
}

func TestUpsertCase_ConflictStrategies(t *testing.T) {
	tests := []struct {
		strategy model.ConflictStrategy
		want     int64
	}{
		{model.ConflictReplace, 5},
		{model.ConflictAdd, 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			s := createTestStore(t)
			p := seedPlaces(t, s)
			ctx := context.Background()

			c := model.Case{Type: model.CaseConfirmed, Amount: 10, Date: day(3), CountryID: p.spain}
			require.NoError(t, s.UpsertCase(ctx, c, tt.strategy))

			c.Amount = 5
			require.NoError(t, s.UpsertCase(ctx, c, tt.strategy))

			count, amount := storedAmount(t, s)
			assert.Equal(t, 1, count)
			assert.Equal(t, tt.want, amount)
		})
	}
}

func TestUpsertCase_NullPlacesCollide(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)
	ctx := context.Background()

	national := model.Case{Type: model.CaseDead, Amount: 1, Date: day(1), CountryID: p.spain}
	regional := national
	regional.ProvinceID = int64Ptr(p.madrid)

	require.NoError(t, s.UpsertCase(ctx, national, model.ConflictAdd))
	require.NoError(t, s.UpsertCase(ctx, national, model.ConflictAdd))
	require.NoError(t, s.UpsertCase(ctx, regional, model.ConflictAdd))

	count, amount := storedAmount(t, s)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(3), amount)
}

func TestUpsertCase_ValidationWritesNothing(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)

	err := s.UpsertCase(context.Background(),
		model.Case{Type: model.CaseConfirmed, Amount: -3, Date: day(1), CountryID: p.spain},
		model.ConflictReplace)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	count, _ := storedAmount(t, s)
	assert.Equal(t, 0, count)
}

func TestUpsertCase_UnknownStrategy(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)

	err := s.UpsertCase(context.Background(),
		model.Case{Type: model.CaseConfirmed, Amount: 1, Date: day(1), CountryID: p.spain},
		model.ConflictStrategy("merge"))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestUpsertCase_ForeignKeyIsDataLayer(t *testing.T) {
	s := createTestStore(t)

	err := s.UpsertCase(context.Background(),
		model.Case{Type: model.CaseConfirmed, Amount: 1, Date: day(1), CountryID: 999},
		model.ConflictReplace)
	require.Error(t, err)
	assert.True(t, apperr.IsDataLayer(err))

	// The driver error is still reachable.
	var sqliteErr sqlite3.Error
	require.True(t, errors.As(err, &sqliteErr))
	assert.Equal(t, sqlite3.ErrConstraint, sqliteErr.Code)
}

func TestUpsertCases_AtomicBatch(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)

	err := s.UpsertCases(context.Background(), []model.Case{
		{Type: model.CaseConfirmed, Amount: 1, Date: day(1), CountryID: p.spain},
		{Type: model.CaseConfirmed, Amount: 1, Date: day(1), CountryID: 999},
	}, model.ConflictReplace)
	require.Error(t, err)

	count, _ := storedAmount(t, s)
	assert.Equal(t, 0, count)
}

func TestCreateCountry_NormalizesAndValidates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.CreateCountry(ctx, model.Country{Name: "  Côte d'Ivoire ", Alpha2: "ci", Alpha3: "civ"})
	require.NoError(t, err)

	c, found, err := s.CountryByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Côte d'Ivoire", c.Name)
	assert.Equal(t, "CI", c.Alpha2)
	assert.Equal(t, "CIV", c.Alpha3)

	_, err = s.CreateCountry(ctx, model.Country{Name: "Spain", Alpha2: "ESP"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateCountry_DuplicateAlpha2(t *testing.T) {
	s := createTestStore(t)
	seedPlaces(t, s)

	_, err := s.CreateCountry(context.Background(), model.Country{Name: "Spain again", Alpha2: "ES"})
	require.Error(t, err)
	assert.True(t, apperr.IsDataLayer(err))
}

func TestCreateProvince_UnknownCountry(t *testing.T) {
	s := createTestStore(t)

	_, err := s.CreateProvince(context.Background(), model.Province{Name: "Nowhere", CountryID: 42})
	require.Error(t, err)
	assert.True(t, apperr.IsDataLayer(err))
}

func TestCreateCounty(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)
	ctx := context.Background()

	id, err := s.CreateCounty(ctx, model.County{Name: "Alcalá de Henares", Code: "AH", ProvinceID: p.madrid})
	require.NoError(t, err)

	c, found, err := s.CountyByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alcalá de Henares", c.Name)
	assert.Equal(t, p.madrid, c.ProvinceID)
}

func TestEnsureCountry_Idempotent(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)
	ctx := context.Background()

	id, err := s.EnsureCountry(ctx, model.Country{Name: "Spain", Alpha2: "es"})
	require.NoError(t, err)
	assert.Equal(t, p.spain, id)

	it, err := s.EnsureCountry(ctx, model.Country{Name: "Italy", Alpha2: "IT", Alpha3: "ITA"})
	require.NoError(t, err)
	again, err := s.EnsureCountry(ctx, model.Country{Name: "Italy", Alpha2: "IT"})
	require.NoError(t, err)
	assert.Equal(t, it, again)
}

func TestEnsureProvince_MatchesNormalizedName(t *testing.T) {
	s := createTestStore(t)
	p := seedPlaces(t, s)

	id, err := s.EnsureProvince(context.Background(), model.Province{Name: " Madrid ", CountryID: p.spain})
	require.NoError(t, err)
	assert.Equal(t, p.madrid, id)

	other, err := s.EnsureProvince(context.Background(), model.Province{Name: "Île-de-France", CountryID: p.france})
	require.NoError(t, err)
	assert.NotEqual(t, p.madrid, other)
}
