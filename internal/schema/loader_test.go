package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchforge/goldgraph/internal/testutil"
)

const payload = `[
  {
    "db_id": "shop",
    "table_names_original": ["customers"],
    "column_names_original": [[-1, "*"], [0, "id"], [0, "name"]],
    "foreign_keys": []
  },
  {
    "db_id": "flights",
    "table_names_original": ["flights", "carriers"],
    "column_names_original": [[-1, "*"], [0, "flight_id"], [0, "carrier"], [1, "carrier"], [1, "description"]],
    "foreign_keys": [[2, 3]]
  }
]`

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCache(t *testing.T) {
	cache, err := LoadCache(writePayload(t, payload), testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	s, err := cache.Get("flights")
	require.NoError(t, err)
	assert.Len(t, s.ForeignKeys, 1)
}

func TestCacheUnknownDBID(t *testing.T) {
	cache, err := LoadCache(writePayload(t, payload), testutil.NewTestLogger(t))
	require.NoError(t, err)

	_, err = cache.Get("missing")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "missing", nfe.DBID)

	// Not-found is a bad example, never a corrupt payload.
	var se *Error
	assert.False(t, errors.As(err, &se))
}

func TestLoadCacheFailsFastOnBrokenSchema(t *testing.T) {
	broken := `[{"db_id": "bad", "table_names_original": ["t"], "column_names_original": [[7, "x"]], "foreign_keys": []}]`

	_, err := LoadCache(writePayload(t, broken), testutil.NewTestLogger(t))
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad", se.DBID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
