package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAssignsIndexes(t *testing.T) {
	path := writeFile(t, "dev.json", `[
		{"db_id": "shop", "question": "How many orders?", "SQL": "SELECT COUNT(*) FROM orders"},
		{"db_id": "shop", "question_en": "Top customer?", "SQL": "SELECT name FROM customers LIMIT 1"}
	]`)

	examples, err := Load(path)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, 0, examples[0].Index)
	assert.Equal(t, 1, examples[1].Index)
	assert.Equal(t, "How many orders?", examples[0].QuestionText())
	assert.Equal(t, "Top customer?", examples[1].QuestionText())
}

func TestLoadAllReindexesAcrossFiles(t *testing.T) {
	a := writeFile(t, "dev.json", `[{"db_id": "shop", "SQL": "SELECT 1"}]`)
	b := writeFile(t, "dev_tied_append.json", `[{"db_id": "shop", "SQL": "SELECT 2"}, {"db_id": "shop", "SQL": "SELECT 3"}]`)

	examples, err := LoadAll(a, b)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	assert.Equal(t, 2, examples[2].Index)
}

func TestLoadToleratesBOM(t *testing.T) {
	path := writeFile(t, "dev.json", "\xEF\xBB\xBF"+`[{"db_id": "shop", "SQL": "SELECT 1"}]`)

	examples, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, examples, 1)
}

func TestEnsureFieldAddsMissing(t *testing.T) {
	path := writeFile(t, "dev.json", `[
		{"db_id": "shop", "question": "q1"},
		{"db_id": "shop", "question": "q2", "question_ar": "س"}
	]`)

	changed, err := EnsureField(path, "question_ar")
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Equal(t, "", records[0]["question_ar"])
	assert.Equal(t, "س", records[1]["question_ar"])
	// Other fields survive the rewrite.
	assert.Equal(t, "q1", records[0]["question"])
}

func TestEnsureFieldNoChange(t *testing.T) {
	content := `[{"db_id": "shop", "question_ar": ""}]`
	path := writeFile(t, "dev.json", content)

	changed, err := EnsureField(path, "question_ar")
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestChunkNearEqual(t *testing.T) {
	records := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	chunks := Chunk(records, 4)
	require.Len(t, chunks, 4)
	assert.Equal(t, []int{1, 2, 3}, chunks[0])
	assert.Equal(t, []int{4, 5, 6}, chunks[1])
	assert.Equal(t, []int{7, 8}, chunks[2])
	assert.Equal(t, []int{9, 10}, chunks[3])
}

func TestChunkDegenerateCases(t *testing.T) {
	assert.Len(t, Chunk([]int{1, 2}, 1), 1)
	assert.Len(t, Chunk([]int{}, 4), 1)

	// More parts than records leaves trailing empty chunks.
	chunks := Chunk([]int{1, 2}, 3)
	require.Len(t, chunks, 3)
	assert.Empty(t, chunks[2])
}

func TestSplitFile(t *testing.T) {
	path := writeFile(t, "train.json", `[
		{"db_id": "a", "SQL": "SELECT 1"},
		{"db_id": "b", "SQL": "SELECT 2"},
		{"db_id": "c", "SQL": "SELECT 3"}
	]`)

	written, err := SplitFile(path, 2)
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "train_part1of2.json", filepath.Base(written[0]))
	assert.Equal(t, "train_part2of2.json", filepath.Base(written[1]))

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var part []map[string]any
	require.NoError(t, json.Unmarshal(data, &part))
	require.Len(t, part, 2)
	assert.Equal(t, "a", part[0]["db_id"])
}
