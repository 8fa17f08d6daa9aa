package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchforge/goldgraph/internal/corpus"
	"github.com/benchforge/goldgraph/internal/schema"
	"github.com/benchforge/goldgraph/internal/testutil"
)

func shopCache(t *testing.T) *schema.Cache {
	t.Helper()
	raws := []*schema.RawDatabase{
		{
			DBID:               "shop",
			TableNamesOriginal: []string{"customers", "orders"},
			ColumnNamesOriginal: []schema.ColumnName{
				{TableIndex: -1, Name: "*"},
				{TableIndex: 0, Name: "id"},
				{TableIndex: 0, Name: "name"},
				{TableIndex: 1, Name: "id"},
				{TableIndex: 1, Name: "customer_id"},
				{TableIndex: 1, Name: "total"},
			},
			ForeignKeys: []schema.ForeignKeyPair{{ChildIndex: 4, ParentIndex: 1}},
			ForeignKeyDescriptions: []schema.FKDescription{
				{Summary: "orders.customer_id references customers.id."},
			},
		},
	}
	cache, err := schema.NewCache(raws, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return cache
}

func examples(sqls ...string) []*corpus.Example {
	out := make([]*corpus.Example, len(sqls))
	for i, sql := range sqls {
		out[i] = &corpus.Example{Index: i, DBID: "shop", SQL: sql}
	}
	return out
}

func TestRunSuccess(t *testing.T) {
	d := New(shopCache(t), 4, testutil.NewTestLogger(t))

	entries, report, err := d.Run(context.Background(), examples(
		"SELECT c.name FROM customers c JOIN orders o ON o.customer_id = c.id",
		"SELECT total FROM orders",
	))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 0, entries[0].Idx)
	assert.Len(t, entries[0].Nodes, 2)
	assert.Len(t, entries[0].Edges, 1)
	assert.Contains(t, entries[0].ContextText, "Relationships:")

	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, report.Failures)
}

func TestRunIsolatesRecoverableFailures(t *testing.T) {
	d := New(shopCache(t), 2, testutil.NewTestLogger(t))

	entries, report, err := d.Run(context.Background(), examples(
		"SELECT total FROM orders",
		"UPDATE orders SET total = 0",  // parse failure
		"SELECT nope FROM orders",      // resolution failure
		"SELECT name FROM customers",   // fine again
	))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Failed entries keep their slot with an empty graph.
	assert.Empty(t, entries[1].Nodes)
	assert.NotNil(t, entries[1].Nodes)
	assert.Empty(t, entries[2].Edges)
	assert.Len(t, entries[3].Nodes, 1)

	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, KindParse, report.Failures[0].Kind)
	assert.Equal(t, 1, report.Failures[0].Idx)
	assert.Equal(t, KindResolution, report.Failures[1].Kind)
	assert.Equal(t, 1, report.ByKind[KindParse])
	assert.Equal(t, 1, report.ByKind[KindResolution])
}

func TestRunUnknownDatabaseIsRecoverable(t *testing.T) {
	d := New(shopCache(t), 1, testutil.NewTestLogger(t))

	exs := examples("SELECT total FROM orders")
	exs[0].DBID = "missing"

	entries, report, err := d.Run(context.Background(), exs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Nodes)
	assert.NotNil(t, entries[0].Nodes)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, KindUnknownDB, report.Failures[0].Kind)
	assert.Equal(t, "missing", report.Failures[0].DBID)
}

func TestRunAbortReturnsPartialReport(t *testing.T) {
	d := New(shopCache(t), 1, testutil.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, report, err := d.Run(ctx, examples(
		"SELECT total FROM orders",
		"SELECT name FROM customers",
	))
	require.Error(t, err)
	assert.Nil(t, entries)

	// The partial report survives the abort.
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 0, report.Succeeded)
	assert.Empty(t, report.Failures)
}

func TestRunOutputOrderIndependentOfWorkers(t *testing.T) {
	sqls := make([]string, 40)
	for i := range sqls {
		sqls[i] = "SELECT total FROM orders"
	}
	d := New(shopCache(t), 8, testutil.NewTestLogger(t))

	entries, _, err := d.Run(context.Background(), examples(sqls...))
	require.NoError(t, err)
	for i, e := range entries {
		assert.Equal(t, i, e.Idx)
	}
}

func TestWriteEntriesAndReport(t *testing.T) {
	d := New(shopCache(t), 1, testutil.NewTestLogger(t))
	entries, report, err := d.Run(context.Background(), examples(
		"SELECT total FROM orders",
		"not sql at all",
	))
	require.NoError(t, err)

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out", "dev_gold_graphs.json")
	reportPath := filepath.Join(dir, "out", "dev_failures.json")
	require.NoError(t, WriteEntries(outPath, entries))
	require.NoError(t, WriteReport(reportPath, report))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "shop", decoded[0]["db_id"])
	// The failed entry serializes empty arrays, not null.
	assert.NotNil(t, decoded[1]["nodes"])

	data, err = os.ReadFile(reportPath)
	require.NoError(t, err)
	var failures []Failure
	require.NoError(t, json.Unmarshal(data, &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, KindParse, failures[0].Kind)
}
