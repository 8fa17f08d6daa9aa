// Package augment enriches schema payloads with human-readable descriptions
// harvested from per-database description CSVs: a description per column and
// a summary per foreign key.
package augment

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/benchforge/goldgraph/internal/textenc"
)

// normKey normalizes a name for matching: lowercased with every
// non-alphanumeric character removed. Stricter than the resolver's
// separator normalization because CSV headers are messier than schemas.
func normKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DescriptionMap maps normalized table name to normalized column name to
// column description, for one database.
type DescriptionMap map[string]map[string]string

// Lookup returns the description for a table/column pair.
func (m DescriptionMap) Lookup(table, column string) string {
	cols, ok := m[normKey(table)]
	if !ok {
		return ""
	}
	return cols[normKey(column)]
}

// FindDBDir locates the directory of a database under the given roots,
// first by exact name, then by normalized match.
func FindDBDir(roots []string, dbID string) (string, bool) {
	target := normKey(dbID)
	for _, root := range roots {
		direct := filepath.Join(root, dbID)
		if info, err := os.Stat(direct); err == nil && info.IsDir() {
			return direct, true
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && normKey(entry.Name()) == target {
				return filepath.Join(root, entry.Name()), true
			}
		}
	}
	return "", false
}

// LoadDescriptions builds the description map of one database from its
// database_description/*.csv files. Unreadable files are logged and
// skipped; a database without the directory yields an empty map.
func LoadDescriptions(dbDir string, logger *slog.Logger) DescriptionMap {
	result := make(DescriptionMap)

	descDir := filepath.Join(dbDir, "database_description")
	entries, err := os.ReadDir(descDir)
	if err != nil {
		return result
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(descDir, name)
		cols, err := readDescriptionCSV(path)
		if err != nil {
			logger.Warn("skipping unreadable description file", "path", path, "error", err)
			continue
		}
		if len(cols) > 0 {
			tableKey := normKey(strings.TrimSuffix(name, filepath.Ext(name)))
			result[tableKey] = cols
		}
	}
	return result
}

// readDescriptionCSV reads one description CSV into a normalized
// column-to-description map. Matching prefers the original_column_name
// header, falling back to column_name.
func readDescriptionCSV(path string) (map[string]string, error) {
	data, err := textenc.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[normKey(h)] = i
	}

	field := func(row []string, keys ...string) string {
		for _, key := range keys {
			if i, ok := colIdx[key]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	result := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		origName := field(row, "originalcolumnname", "original")
		colName := field(row, "columnname")
		desc := field(row, "columndescription", "description")

		for _, cand := range []string{origName, colName} {
			key := normKey(cand)
			if key == "" {
				continue
			}
			// Never overwrite a non-empty description with an empty one.
			if existing, ok := result[key]; !ok || (desc != "" && existing == "") {
				result[key] = desc
			}
		}
	}
	return result, nil
}
