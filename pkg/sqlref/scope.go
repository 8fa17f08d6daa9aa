package sqlref

// Scope tracks the table sources visible to one SELECT core. Scopes form
// a chain through parent links so correlated subqueries can resolve
// references against enclosing queries. Sibling cores of a set operation
// get sibling scopes and never see each other's aliases.

// entryKind classifies a scope entry by the kind of FROM source it names.
type entryKind int

const (
	entryTable entryKind = iota
	entryCTE
	entryDerived
)

// ScopeEntry represents one source in a FROM clause: a base table, a CTE
// reference, or a derived table. Columns holds canonical column names for
// base tables and output column names otherwise. ColumnsKnown is false
// when a derived source projects a star and its outputs cannot be listed.
type ScopeEntry struct {
	Alias        string // display name used to introduce the source
	Kind         entryKind
	Table        string // canonical base table name, entryTable only
	Columns      []string
	ColumnsKnown bool

	columnIndex map[string]string // normalized column -> canonical/output name
}

// HasColumn reports whether the entry exposes the named column, along
// with the canonical spelling. Entries with unknown outputs report false.
func (e *ScopeEntry) HasColumn(name string) (string, bool) {
	canonical, ok := e.columnIndex[NormalizeName(name)]
	return canonical, ok
}

// cteDef records a CTE available for FROM references in the current
// statement. Output columns come from the CTE body's select list.
type cteDef struct {
	Name         string
	Columns      []string
	ColumnsKnown bool
}

// Scope holds the sources of one SELECT core and links to the scope of
// the enclosing query, if any.
type Scope struct {
	parent  *Scope
	entries []*ScopeEntry
	byAlias map[string]*ScopeEntry
	ctes    map[string]*cteDef
}

// NewScope creates a scope with the given parent. A nil parent makes a
// top-level scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		byAlias: make(map[string]*ScopeEntry),
	}
}

// AddEntry introduces a source under its alias. Later entries with the
// same normalized alias shadow earlier ones within this scope.
func (s *Scope) AddEntry(e *ScopeEntry) {
	e.columnIndex = make(map[string]string, len(e.Columns))
	for _, col := range e.Columns {
		key := NormalizeName(col)
		if _, exists := e.columnIndex[key]; !exists {
			e.columnIndex[key] = col
		}
	}
	s.entries = append(s.entries, e)
	s.byAlias[NormalizeName(e.Alias)] = e
}

// Lookup resolves an alias or table name in this scope only.
func (s *Scope) Lookup(name string) (*ScopeEntry, bool) {
	e, ok := s.byAlias[NormalizeName(name)]
	return e, ok
}

// LookupWalk resolves an alias in this scope or any enclosing scope,
// nearest first.
func (s *Scope) LookupWalk(name string) (*ScopeEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.Lookup(name); ok {
			return e, true
		}
	}
	return nil, false
}

// DefineCTE registers a CTE for the statement this scope belongs to.
func (s *Scope) DefineCTE(def *cteDef) {
	if s.ctes == nil {
		s.ctes = make(map[string]*cteDef)
	}
	s.ctes[NormalizeName(def.Name)] = def
}

// LookupCTE resolves a CTE name in this scope or any enclosing scope.
// Inner definitions shadow outer ones.
func (s *Scope) LookupCTE(name string) (*cteDef, bool) {
	key := NormalizeName(name)
	for cur := s; cur != nil; cur = cur.parent {
		if cur.ctes != nil {
			if def, ok := cur.ctes[key]; ok {
				return def, true
			}
		}
	}
	return nil, false
}

// Entries returns the sources of this scope in FROM order.
func (s *Scope) Entries() []*ScopeEntry {
	return s.entries
}
