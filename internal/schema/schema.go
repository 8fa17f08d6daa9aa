package schema

import (
	"fmt"

	"github.com/benchforge/goldgraph/pkg/sqlref"
)

// Error reports a structurally invalid schema payload. Schema errors are
// fatal: a broken schema poisons every question against its database, so
// loading fails fast instead of degrading per example.
type Error struct {
	DBID    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema %s: %s", e.DBID, e.Message)
}

// Column is one column of a resolved schema table.
type Column struct {
	Name        string
	Type        string
	Description string
	GlobalIndex int // position in the payload's global column list
}

// Table is one table of a resolved schema.
type Table struct {
	Name    string
	Columns []*Column

	byNorm map[string]*Column
}

// Column resolves a column by normalized name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byNorm[sqlref.NormalizeName(name)]
	return c, ok
}

// ColumnNames returns the table's column names in payload order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKey is one resolved foreign key edge: a child column referencing a
// parent column, with the source payload's description if present.
type ForeignKey struct {
	ChildTable   *Table
	ChildColumn  *Column
	ParentTable  *Table
	ParentColumn *Column
	Description  string
}

// Schema is the resolved form of one database payload: tables with their
// columns, plus the foreign key edges between them.
type Schema struct {
	DBID        string
	Tables      []*Table
	ForeignKeys []*ForeignKey

	byNorm map[string]*Table
}

// Table resolves a table by normalized name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.byNorm[sqlref.NormalizeName(name)]
	return t, ok
}

// Catalog adapts the schema to the resolver's lookup interface.
func (s *Schema) Catalog() sqlref.Catalog {
	return catalogAdapter{s}
}

type catalogAdapter struct {
	schema *Schema
}

func (a catalogAdapter) Table(name string) (string, []string, bool) {
	t, ok := a.schema.Table(name)
	if !ok {
		return "", nil, false
	}
	return t.Name, t.ColumnNames(), true
}

// Build resolves a raw payload into a Schema, validating every carried
// index against the ranges it addresses.
func Build(raw *RawDatabase) (*Schema, error) {
	if raw.DBID == "" {
		return nil, &Error{DBID: "(unknown)", Message: "missing db_id"}
	}

	s := &Schema{
		DBID:   raw.DBID,
		byNorm: make(map[string]*Table, len(raw.TableNamesOriginal)),
	}

	for _, name := range raw.TableNamesOriginal {
		t := &Table{Name: name, byNorm: make(map[string]*Column)}
		s.Tables = append(s.Tables, t)
		key := sqlref.NormalizeName(name)
		if _, dup := s.byNorm[key]; dup {
			return nil, &Error{DBID: raw.DBID, Message: fmt.Sprintf("duplicate table name %q under normalization", name)}
		}
		s.byNorm[key] = t
	}

	// The global column list indexes into tables; -1 marks the synthetic
	// all-columns entry, which resolves to no table.
	globalColumns := make([]*Column, len(raw.ColumnNamesOriginal))
	for i, cn := range raw.ColumnNamesOriginal {
		if cn.TableIndex == -1 {
			continue
		}
		if cn.TableIndex < 0 || cn.TableIndex >= len(s.Tables) {
			return nil, &Error{
				DBID:    raw.DBID,
				Message: fmt.Sprintf("column %d (%q): table index %d out of range", i, cn.Name, cn.TableIndex),
			}
		}
		col := &Column{Name: cn.Name, GlobalIndex: i}
		if i < len(raw.ColumnTypes) {
			col.Type = raw.ColumnTypes[i]
		}
		if i < len(raw.ColumnDescriptions) {
			col.Description = raw.ColumnDescriptions[i]
		}
		t := s.Tables[cn.TableIndex]
		t.Columns = append(t.Columns, col)
		key := sqlref.NormalizeName(cn.Name)
		if _, dup := t.byNorm[key]; !dup {
			t.byNorm[key] = col
		}
		globalColumns[i] = col
	}

	tableOf := make(map[*Column]*Table)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			tableOf[c] = t
		}
	}

	// Descriptions attach by (child, parent) tuple, not list position, so
	// payloads whose description list was reordered or produced elsewhere
	// still line up. Reversed tuples cover descriptions written from the
	// parent's point of view.
	descByPair := make(map[[4]string]string, len(raw.ForeignKeyDescriptions))
	for _, d := range raw.ForeignKeyDescriptions {
		if d.ChildTable == "" && d.ParentTable == "" {
			continue
		}
		key := descKey(d.ChildTable, d.ChildColumn, d.ParentTable, d.ParentColumn)
		if _, exists := descByPair[key]; !exists {
			descByPair[key] = d.Summary
		}
	}

	for i, pair := range raw.ForeignKeys {
		child, err := lookupGlobal(raw.DBID, globalColumns, pair.ChildIndex, i, "child")
		if err != nil {
			return nil, err
		}
		parent, err := lookupGlobal(raw.DBID, globalColumns, pair.ParentIndex, i, "parent")
		if err != nil {
			return nil, err
		}
		fk := &ForeignKey{
			ChildTable:   tableOf[child],
			ChildColumn:  child,
			ParentTable:  tableOf[parent],
			ParentColumn: parent,
		}
		forward := descKey(fk.ChildTable.Name, child.Name, fk.ParentTable.Name, parent.Name)
		reversed := descKey(fk.ParentTable.Name, parent.Name, fk.ChildTable.Name, child.Name)
		if summary, ok := descByPair[forward]; ok {
			fk.Description = summary
		} else if summary, ok := descByPair[reversed]; ok {
			fk.Description = summary
		} else if i < len(raw.ForeignKeyDescriptions) && raw.ForeignKeyDescriptions[i].ChildTable == "" {
			// Bare summaries without table names can only align by position.
			fk.Description = raw.ForeignKeyDescriptions[i].Summary
		}
		s.ForeignKeys = append(s.ForeignKeys, fk)
	}

	return s, nil
}

func descKey(childTable, childColumn, parentTable, parentColumn string) [4]string {
	return [4]string{
		sqlref.NormalizeName(childTable),
		sqlref.NormalizeName(childColumn),
		sqlref.NormalizeName(parentTable),
		sqlref.NormalizeName(parentColumn),
	}
}

func lookupGlobal(dbID string, columns []*Column, idx, fkIdx int, side string) (*Column, error) {
	if idx < 0 || idx >= len(columns) || columns[idx] == nil {
		return nil, &Error{
			DBID:    dbID,
			Message: fmt.Sprintf("foreign key %d: %s column index %d out of range", fkIdx, side, idx),
		}
	}
	return columns[idx], nil
}
