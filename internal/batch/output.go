package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteEntries persists the index-aligned output array.
func WriteEntries(path string, entries []Entry) error {
	return writeJSON(path, entries)
}

// WriteReport persists the companion failure report: one record per failed
// example. An empty failure list still writes an empty array so operators
// can distinguish "clean run" from "no run".
func WriteReport(path string, report *Report) error {
	failures := report.Failures
	if failures == nil {
		failures = []Failure{}
	}
	return writeJSON(path, failures)
}

// writeJSON writes four-space indented JSON without HTML escaping, matching
// the question file convention.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
