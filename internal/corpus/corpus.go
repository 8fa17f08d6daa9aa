// Package corpus loads and maintains benchmark question files: the per-split
// JSON arrays of natural-language questions paired with reference SQL.
package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/benchforge/goldgraph/internal/textenc"
)

// Example is one benchmark question. Index is the position within the
// loaded split, used to align outputs with inputs.
type Example struct {
	Index      int    `json:"-"`
	DBID       string `json:"db_id"`
	Question   string `json:"question,omitempty"`
	QuestionEN string `json:"question_en,omitempty"`
	QuestionAR string `json:"question_ar"`
	Evidence   string `json:"evidence,omitempty"`
	SQL        string `json:"SQL"`
}

// QuestionText returns the English question, falling back to the legacy
// unsuffixed field.
func (e *Example) QuestionText() string {
	if e.QuestionEN != "" {
		return e.QuestionEN
	}
	return e.Question
}

// Load reads one question file.
func Load(path string) ([]*Example, error) {
	data, err := textenc.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}

	var examples []*Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parsing questions %s: %w", path, err)
	}
	for i, ex := range examples {
		ex.Index = i
	}
	return examples, nil
}

// LoadAll concatenates several question files into one split, reindexing
// across file boundaries. Missing trailing files are tolerated by callers
// that pass only existing paths.
func LoadAll(paths ...string) ([]*Example, error) {
	var all []*Example
	for _, path := range paths {
		examples, err := Load(path)
		if err != nil {
			return nil, err
		}
		all = append(all, examples...)
	}
	for i, ex := range all {
		ex.Index = i
	}
	return all, nil
}
