package schema

import (
	"encoding/json"
	"fmt"
)

// ColumnName is one entry of column_names_original: a [table_index, name]
// pair. A table index of -1 marks the synthetic all-columns entry.
type ColumnName struct {
	TableIndex int
	Name       string
}

// UnmarshalJSON decodes the two-element array form.
func (c *ColumnName) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("column name entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.TableIndex); err != nil {
		return fmt.Errorf("column name entry: table index: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Name); err != nil {
		return fmt.Errorf("column name entry: name: %w", err)
	}
	return nil
}

// MarshalJSON encodes back to the two-element array form.
func (c ColumnName) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.TableIndex, c.Name})
}

// ForeignKeyPair is one entry of foreign_keys: a [child_column_index,
// parent_column_index] pair over the global column list.
type ForeignKeyPair struct {
	ChildIndex  int
	ParentIndex int
}

// UnmarshalJSON decodes the two-element array form.
func (f *ForeignKeyPair) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("foreign key entry: expected 2 elements, got %d", len(pair))
	}
	f.ChildIndex = pair[0]
	f.ParentIndex = pair[1]
	return nil
}

// MarshalJSON encodes back to the two-element array form.
func (f ForeignKeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{f.ChildIndex, f.ParentIndex})
}

// PrimaryKey is one entry of primary_keys: either a single column index or
// an array of indexes for composite keys.
type PrimaryKey struct {
	ColumnIndexes []int
}

// UnmarshalJSON accepts both the scalar and the array form.
func (p *PrimaryKey) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		p.ColumnIndexes = []int{single}
		return nil
	}
	return json.Unmarshal(data, &p.ColumnIndexes)
}

// MarshalJSON keeps the scalar form for single-column keys.
func (p PrimaryKey) MarshalJSON() ([]byte, error) {
	if len(p.ColumnIndexes) == 1 {
		return json.Marshal(p.ColumnIndexes[0])
	}
	return json.Marshal(p.ColumnIndexes)
}

// FKDescription is one entry of foreign_key_descriptions, aligned with the
// foreign_keys list by position.
type FKDescription struct {
	ChildTable        string `json:"child_table"`
	ChildColumn       string `json:"child_column"`
	ParentTable       string `json:"parent_table"`
	ParentColumn      string `json:"parent_column"`
	ChildDescription  string `json:"child_description,omitempty"`
	ParentDescription string `json:"parent_description,omitempty"`
	Summary           string `json:"summary,omitempty"`
	Usage             string `json:"usage,omitempty"`
}

// RawDatabase mirrors one entry of a tables.json payload. Index-carried
// fields stay in their wire form; Build turns them into a Schema.
type RawDatabase struct {
	DBID                   string           `json:"db_id"`
	TableNames             []string         `json:"table_names,omitempty"`
	TableNamesOriginal     []string         `json:"table_names_original"`
	ColumnNames            []ColumnName     `json:"column_names,omitempty"`
	ColumnNamesOriginal    []ColumnName     `json:"column_names_original"`
	ColumnTypes            []string         `json:"column_types,omitempty"`
	ColumnDescriptions     []string         `json:"column_descriptions,omitempty"`
	PrimaryKeys            []PrimaryKey     `json:"primary_keys,omitempty"`
	ForeignKeys            []ForeignKeyPair `json:"foreign_keys"`
	ForeignKeyDescriptions []FKDescription  `json:"foreign_key_descriptions,omitempty"`
}
