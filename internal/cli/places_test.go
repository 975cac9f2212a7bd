package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaces_Countries(t *testing.T) {
	db := seededDB(t)

	code, stdout, _ := execute(t, "--db", db, "--format", "json", "places", "countries")
	require.Equal(t, ExitSuccess, code)

	rows := decodeRows(t, stdout).Data
	require.Len(t, rows, 2)
	assert.Equal(t, "Spain", rows[0]["name"])
	assert.Equal(t, "ES", rows[0]["alpha2"])
	assert.Equal(t, "FRA", rows[1]["alpha3"])
}

func TestPlaces_TextHeader(t *testing.T) {
	db := seededDB(t)

	code, stdout, _ := execute(t, "--db", db, "places", "provinces")
	require.Equal(t, ExitSuccess, code)

	lines := nonEmptyLines(stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"id", "name", "lat", "lng", "code", "country_id"}, fields(lines[0]))
	assert.Contains(t, lines[1], "Madrid")
}

func TestPlaces_ProvincesByCountry(t *testing.T) {
	db := seededDB(t)

	code, stdout, _ := execute(t, "--db", db, "--format", "json", "places", "provinces", "--country", "FR")
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, decodeRows(t, stdout).Data)

	code, stdout, _ = execute(t, "--db", db, "--format", "json", "places", "provinces", "--country", "ES")
	require.Equal(t, ExitSuccess, code)
	assert.Len(t, decodeRows(t, stdout).Data, 1)
}

func TestPlaces_EmptyTableText(t *testing.T) {
	code, stdout, _ := execute(t, "--db", t.TempDir()+"/empty.db", "places", "countries")
	require.Equal(t, ExitSuccess, code)

	lines := nonEmptyLines(stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"id", "name", "alpha2", "alpha3", "lat", "lng"}, fields(lines[0]))
	assert.Equal(t, "(no rows)", lines[1])
}

func TestPlaces_BadKind(t *testing.T) {
	db := seededDB(t)

	code, _, stderr := execute(t, "--db", db, "places", "cities")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "cities")

	code, _, _ = execute(t, "--db", db, "places", "countries", "--country", "ES")
	assert.Equal(t, ExitCommandError, code)
}
