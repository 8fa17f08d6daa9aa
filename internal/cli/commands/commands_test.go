package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchforge/goldgraph/internal/cli"
)

const tablesPayload = `[
  {
    "db_id": "shop",
    "table_names_original": ["customers", "orders"],
    "column_names_original": [[-1, "*"], [0, "id"], [0, "name"], [1, "id"], [1, "customer_id"]],
    "column_descriptions": ["", "customer id", "customer name", "order id", "owning customer"],
    "foreign_keys": [[4, 1]],
    "foreign_key_descriptions": [
      {
        "child_table": "orders",
        "child_column": "customer_id",
        "parent_table": "customers",
        "parent_column": "id",
        "summary": "orders.customer_id references customers.id."
      }
    ]
  }
]`

const questionsPayload = `[
  {"db_id": "shop", "question": "How many customers are there?", "SQL": "SELECT COUNT(*) FROM customers"},
  {"db_id": "shop", "question": "Broken", "SQL": "SELECT FROM WHERE"},
  {"db_id": "shop", "question": "Names of customers with orders", "SQL": "SELECT c.name FROM customers c JOIN orders o ON o.customer_id = c.id"}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGraphsCommand(t *testing.T) {
	dir := t.TempDir()
	tables := writeFile(t, dir, "tables.json", tablesPayload)
	questions := writeFile(t, dir, "dev.json", questionsPayload)
	outDir := filepath.Join(dir, "out")
	statePath := filepath.Join(dir, "state.db")

	out, err := execute(t, "graphs", questions,
		"--tables", tables,
		"--output-dir", outDir,
		"--state", statePath,
		"--workers", "2")
	require.NoError(t, err, out)

	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "Graphs written to")

	data, err := os.ReadFile(filepath.Join(outDir, "dev_graphs.json"))
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)

	// Index 1 is the parse failure: empty graph, position preserved.
	assert.Equal(t, float64(1), entries[1]["idx"])
	assert.Empty(t, entries[1]["nodes"])

	// Index 2 touches both tables and the foreign key.
	nodes := entries[2]["nodes"].([]any)
	assert.Len(t, nodes, 2)
	edges := entries[2]["edges"].([]any)
	assert.Len(t, edges, 1)

	var failures []map[string]any
	data, err = os.ReadFile(filepath.Join(outDir, "dev_failures.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, "parse", failures[0]["kind"])
}

func TestGraphsCommandRecordsRun(t *testing.T) {
	dir := t.TempDir()
	tables := writeFile(t, dir, "tables.json", tablesPayload)
	questions := writeFile(t, dir, "dev.json", questionsPayload)
	statePath := filepath.Join(dir, "state.db")

	out, err := execute(t, "graphs", questions,
		"--tables", tables,
		"--output-dir", filepath.Join(dir, "out"),
		"--state", statePath)
	require.NoError(t, err, out)

	out, err = execute(t, "runs", "--state", statePath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "completed")
}

func TestGraphsCommandMissingTables(t *testing.T) {
	dir := t.TempDir()
	questions := writeFile(t, dir, "dev.json", questionsPayload)

	_, err := execute(t, "graphs", questions,
		"--tables", filepath.Join(dir, "missing.json"),
		"--state", filepath.Join(dir, "state.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	questions := writeFile(t, dir, "dev.json",
		`[{"db_id": "shop", "question": "q", "SQL": "SELECT 1"}]`)

	out, err := execute(t, "normalize", questions, "--state", filepath.Join(dir, "state.db"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "updated")

	data, err := os.ReadFile(questions)
	require.NoError(t, err)
	assert.Contains(t, string(data), "question_ar")
	assert.Contains(t, string(data), "evidence_ar")

	out, err = execute(t, "normalize", questions, "--state", filepath.Join(dir, "state.db"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "already normalized")
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	questions := writeFile(t, dir, "dev.json",
		`[{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}, {"a": 5}]`)

	out, err := execute(t, "split", questions, "--parts", "2", "--state", filepath.Join(dir, "state.db"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "dev_part1of2.json")
	assert.Contains(t, out, "dev_part2of2.json")

	data, err := os.ReadFile(filepath.Join(dir, "dev_part1of2.json"))
	require.NoError(t, err)
	var chunk []map[string]any
	require.NoError(t, json.Unmarshal(data, &chunk))
	assert.Len(t, chunk, 3)
}

func TestAugmentCommand(t *testing.T) {
	dir := t.TempDir()
	tables := writeFile(t, dir, "tables.json", `[
  {
    "db_id": "shop",
    "table_names_original": ["customers", "orders"],
    "column_names_original": [[-1, "*"], [0, "id"], [0, "name"], [1, "id"], [1, "customer_id"]],
    "foreign_keys": [[4, 1]]
  }
]`)

	descDir := filepath.Join(dir, "databases", "shop", "database_description")
	require.NoError(t, os.MkdirAll(descDir, 0o755))
	writeFile(t, descDir, "customers.csv",
		"original_column_name,column_name,column_description\nid,id,unique customer id\nname,name,customer full name\n")

	outPath := filepath.Join(dir, "tables_described.json")
	out, err := execute(t, "augment",
		"--tables", tables,
		"--data-root", filepath.Join(dir, "databases"),
		"--out", outPath,
		"--state", filepath.Join(dir, "state.db"))
	require.NoError(t, err, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "foreign_key_descriptions")
	assert.Contains(t, string(data), "orders.customer_id references customers.id")
	assert.Contains(t, string(data), "unique customer id")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "goldgraph v")
}
