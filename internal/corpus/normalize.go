package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/benchforge/goldgraph/internal/textenc"
)

// EnsureField adds a missing string field to every record of a question
// file, preserving all other fields untouched. It reports whether the file
// was rewritten. Translation tooling expects question_ar to exist on every
// record even before any translation happened.
func EnsureField(path, key string) (bool, error) {
	data, err := textenc.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	changed := false
	for _, rec := range records {
		if _, ok := rec[key]; !ok {
			rec[key] = ""
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	out, err := marshalIndented(records)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// marshalIndented matches the upstream file convention: four-space indent,
// no HTML escaping of multilingual text.
func marshalIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
