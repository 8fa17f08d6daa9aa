package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Chunk splits records into parts contiguous near-equal chunks: the first
// len(records) % parts chunks carry one extra record. Order is preserved.
func Chunk[T any](records []T, parts int) [][]T {
	n := len(records)
	if parts <= 1 || n == 0 {
		return [][]T{records}
	}

	base := n / parts
	extra := n % parts
	chunks := make([][]T, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, records[start:start+size])
		start += size
	}
	return chunks
}

// SplitFile splits a question file into part files next to the original,
// named <stem>_part<I>of<N>.json. Records pass through untouched so the
// parts can be reassembled byte-compatibly.
func SplitFile(path string, parts int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var written []string
	for i, chunk := range Chunk(records, parts) {
		out, err := marshalIndented(chunk)
		if err != nil {
			return nil, err
		}
		name := filepath.Join(dir, fmt.Sprintf("%s_part%dof%d.json", stem, i+1, parts))
		if err := os.WriteFile(name, out, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}
