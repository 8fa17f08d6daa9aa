package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetRun(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "dev", got.Split)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Empty(t, got.Error)
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun("missing")
	assert.ErrorContains(t, err, "run not found")
}

func TestCompleteRun(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("train")
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(run.ID, 100, 97, 3))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 100, got.Total)
	assert.Equal(t, 97, got.Succeeded)
	assert.Equal(t, 3, got.Failed)
}

func TestCompleteRunNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.CompleteRun("missing", 1, 1, 0)
	assert.ErrorContains(t, err, "run not found")
}

func TestFailRun(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev")
	require.NoError(t, err)

	require.NoError(t, store.FailRun(run.ID, "unknown database: missing_db"))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "unknown database: missing_db", got.Error)
	assert.NotNil(t, got.CompletedAt)
}

func TestRecordAndListFailures(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev")
	require.NoError(t, err)

	failures := []FailureRecord{
		{Idx: 7, DBID: "shop", Kind: "resolution", Message: "unknown column: spend"},
		{Idx: 2, DBID: "shop", Kind: "parse", Message: "unexpected token"},
	}
	require.NoError(t, store.RecordFailures(run.ID, failures))

	got, err := store.ListFailures(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Idx)
	assert.Equal(t, "parse", got[0].Kind)
	assert.Equal(t, 7, got[1].Idx)
	assert.Equal(t, run.ID, got[0].RunID)
}

func TestRecordFailuresEmpty(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("dev")
	require.NoError(t, err)
	require.NoError(t, store.RecordFailures(run.ID, nil))

	got, err := store.ListFailures(run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)

	for _, split := range []string{"train", "dev", "test"} {
		_, err := store.CreateRun(split)
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := Open(path)
	require.NoError(t, err)

	run, err := store.CreateRun("dev")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "dev", got.Split)
}
