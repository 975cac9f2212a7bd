package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coviddata/internal/testutil"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ThenQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "covid.db")
	csv := writeCSV(t, testutil.SampleCSV)

	code, stdout, _ := execute(t, "--db", db, "load", csv)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Loaded 6 rows in 1 batches (2 countries, 1 provinces)")

	code, stdout, _ = execute(t, "--db", db, "--format", "json", "query", "--agg", "type", "--sort", "type")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, []map[string]any{
		{"amount": float64(25), "type": "confirmed"},
		{"amount": float64(1), "type": "dead"},
		{"amount": float64(2), "type": "recovered"},
	}, decodeRows(t, stdout).Data)
}

func TestLoad_StrategyAdd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "covid.db")
	csv := writeCSV(t, testutil.SampleCSV)

	for i := 0; i < 2; i++ {
		code, _, _ := execute(t, "--db", db, "load", "--strategy", "add", csv)
		require.Equal(t, ExitSuccess, code)
	}

	code, stdout, _ := execute(t, "--db", db, "--format", "json", "query", "--type", "dead", "--agg", "type")
	require.Equal(t, ExitSuccess, code)
	rows := decodeRows(t, stdout).Data
	require.Len(t, rows, 1)
	assert.Equal(t, float64(2), rows[0]["amount"])
}

func TestLoad_JSONResult(t *testing.T) {
	db := filepath.Join(t.TempDir(), "covid.db")
	csv := writeCSV(t, testutil.SampleCSV)

	code, stdout, _ := execute(t, "--db", db, "--format", "json", "load", csv)
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Rows    int      `json:"rows"`
			Batches []string `json:"batches"`
		} `json:"data"`
	}
	require.NoError(t, decodeJSON(stdout, &resp))
	assert.Equal(t, 6, resp.Data.Rows)
	assert.Len(t, resp.Data.Batches, 1)
}

func TestLoad_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "covid.db")

	code, _, stderr := execute(t, "--db", db, "load", "--strategy", "merge", writeCSV(t, testutil.SampleCSV))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "merge")

	code, _, stderr = execute(t, "--db", db, "load", writeCSV(t, "type,amount,date,country,alpha2\nsick,1,2021-01-01,Spain,ES\n"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "line 2")

	code, _, _ = execute(t, "--db", db, "load", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, ExitCommandError, code)

	code, _, _ = execute(t, "--db", db, "load")
	assert.Equal(t, ExitCommandError, code)
}
