package sqlref

import "strings"

// Catalog exposes the schema information the resolver needs: table lookup
// under normalized matching and the canonical column order per table.
//
// Implementations must be safe for concurrent readers; resolution never
// mutates the catalog.
type Catalog interface {
	// Table resolves a table name under normalized matching. It returns the
	// table's canonical name and its canonical column list, excluding any
	// synthetic all-columns entry.
	Table(name string) (canonical string, columns []string, ok bool)
}

// NormalizeName lowercases a schema identifier and strips whitespace,
// underscores, and hyphens, so that "Order Items", "order_items" and
// "order-items" all compare equal.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapCatalog is a Catalog backed by a plain map from table name to column
// list. Useful for tests and small callers that don't carry a full schema
// index.
type MapCatalog map[string][]string

// Table implements Catalog.
func (m MapCatalog) Table(name string) (string, []string, bool) {
	want := NormalizeName(name)
	for canonical, cols := range m {
		if NormalizeName(canonical) == want {
			return canonical, cols, true
		}
	}
	return "", nil, false
}
