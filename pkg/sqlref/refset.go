package sqlref

// TableUse records one base table touched by a statement: its canonical name,
// the columns referenced on it (first-appearance order, deduplicated), and
// whether the statement wildcard-projected it.
type TableUse struct {
	Name     string
	Columns  []string
	Wildcard bool
}

// ReferenceSet is the resolver's output: the deduplicated base tables a
// statement references, ordered by first appearance, with per-table column
// usage. Subquery- and CTE-local aliases never appear here; the base tables
// they touch do.
type ReferenceSet struct {
	Tables []*TableUse

	index map[string]*TableUse // canonical name -> entry
}

// NewReferenceSet returns an empty reference set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{index: make(map[string]*TableUse)}
}

// AddTable records a base table reference, preserving first-appearance order.
func (rs *ReferenceSet) AddTable(canonical string) *TableUse {
	if use, ok := rs.index[canonical]; ok {
		return use
	}
	use := &TableUse{Name: canonical}
	rs.index[canonical] = use
	rs.Tables = append(rs.Tables, use)
	return use
}

// AddColumn records a column reference against a base table, deduplicated in
// first-appearance order. The table is added if not yet present.
func (rs *ReferenceSet) AddColumn(table, column string) {
	use := rs.AddTable(table)
	for _, c := range use.Columns {
		if c == column {
			return
		}
	}
	use.Columns = append(use.Columns, column)
}

// MarkWildcard flags a base table as wildcard-projected.
func (rs *ReferenceSet) MarkWildcard(table string) {
	rs.AddTable(table).Wildcard = true
}

// Table returns the usage entry for a canonical table name.
func (rs *ReferenceSet) Table(canonical string) (*TableUse, bool) {
	use, ok := rs.index[canonical]
	return use, ok
}

// TableNames returns the canonical table names in first-appearance order.
func (rs *ReferenceSet) TableNames() []string {
	names := make([]string, len(rs.Tables))
	for i, use := range rs.Tables {
		names[i] = use.Name
	}
	return names
}
