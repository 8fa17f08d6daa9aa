package sqlref

import (
	"fmt"
	"sort"
	"strings"
)

// Resolver maps parsed statements onto a Catalog, producing the set of base
// tables and columns the statement references. Aliases, CTEs, and derived
// tables are resolved away: only base tables appear in the result.
//
// Resolution never guesses. An unqualified column matching more than one
// visible source is an error unless exactly one of the candidates also
// qualifies that column explicitly somewhere in the same SELECT core.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve parses sql and resolves it against catalog in one step.
func Resolve(sql string, catalog Catalog) (*ReferenceSet, error) {
	return NewResolver(catalog).Resolve(sql)
}

// Resolve parses and resolves a single SELECT statement.
func (r *Resolver) Resolve(sql string) (*ReferenceSet, error) {
	stmt, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	return r.ResolveStmt(stmt)
}

// ResolveStmt resolves an already parsed statement.
func (r *Resolver) ResolveStmt(stmt *SelectStmt) (*ReferenceSet, error) {
	w := &walker{catalog: r.catalog, refs: NewReferenceSet()}
	if _, _, err := w.resolveStatement(stmt, nil); err != nil {
		return nil, err
	}
	return w.refs, nil
}

// walker carries resolution state for one statement tree.
type walker struct {
	catalog Catalog
	refs    *ReferenceSet
}

// resolveStatement resolves a statement, including its WITH clause, and
// returns the statement's output column names. known is false when the
// output cannot be enumerated (a star projection somewhere in the body).
func (w *walker) resolveStatement(stmt *SelectStmt, parent *Scope) (cols []string, known bool, err error) {
	stmtScope := NewScope(parent)

	if stmt.With != nil {
		// CTEs see previously defined CTEs of the same WITH clause. A
		// recursive CTE also sees itself while its body resolves, as an
		// opaque definition whose output is not yet known.
		for _, cte := range stmt.With.CTEs {
			if stmt.With.Recursive {
				stmtScope.DefineCTE(&cteDef{Name: cte.Name})
			}
			cteCols, cteKnown, err := w.resolveStatement(cte.Select, stmtScope)
			if err != nil {
				return nil, false, err
			}
			stmtScope.DefineCTE(&cteDef{Name: cte.Name, Columns: cteCols, ColumnsKnown: cteKnown})
		}
	}

	return w.resolveBody(stmt.Body, stmtScope)
}

// resolveBody resolves a select body and its set-operation branches. Each
// branch gets a sibling scope; the first branch determines output columns.
func (w *walker) resolveBody(body *SelectBody, parent *Scope) ([]string, bool, error) {
	cols, known, err := w.resolveCore(body.Left, parent)
	if err != nil {
		return nil, false, err
	}
	if body.Right != nil {
		if _, _, err := w.resolveBody(body.Right, parent); err != nil {
			return nil, false, err
		}
	}
	return cols, known, nil
}

// resolveCore resolves one SELECT core: builds the scope from FROM, then
// resolves every expression in the core against it.
func (w *walker) resolveCore(core *SelectCore, parent *Scope) ([]string, bool, error) {
	scope := NewScope(parent)

	if core.From != nil {
		if err := w.buildFromScope(core.From, scope); err != nil {
			return nil, false, err
		}
	}

	c := &refCollector{}
	for _, item := range core.Columns {
		switch {
		case item.Star:
			c.stars = append(c.stars, &StarExpr{})
		case item.TableStar != "":
			c.stars = append(c.stars, &StarExpr{Table: item.TableStar})
		default:
			c.walk(item.Expr)
		}
	}
	if core.From != nil {
		for _, join := range core.From.Joins {
			c.walk(join.Condition)
		}
	}
	c.walk(core.Where)
	c.walk(core.Limit)
	c.walk(core.Offset)

	// GROUP BY, HAVING, and ORDER BY may reference select-list aliases.
	c.aliasOK = true
	for _, e := range core.GroupBy {
		c.walk(e)
	}
	c.walk(core.Having)
	for _, item := range core.OrderBy {
		c.walk(item.Expr)
	}

	aliases := make(map[string]bool)
	for _, item := range core.Columns {
		if item.Alias != "" {
			aliases[NormalizeName(item.Alias)] = true
		}
	}

	if err := w.resolveRefs(c, scope, aliases); err != nil {
		return nil, false, err
	}

	// Predicate and scalar subqueries resolve with this core's scope as
	// parent so correlated references reach the enclosing sources.
	for _, sub := range c.subqueries {
		if _, _, err := w.resolveStatement(sub, scope); err != nil {
			return nil, false, err
		}
	}

	cols, known := outputColumns(core)
	return cols, known, nil
}

// buildFromScope introduces every FROM source into the scope and records
// USING and NATURAL join columns.
func (w *walker) buildFromScope(from *FromClause, scope *Scope) error {
	if _, err := w.addSource(from.Source, scope); err != nil {
		return err
	}
	for _, join := range from.Joins {
		right, err := w.addSource(join.Right, scope)
		if err != nil {
			return err
		}
		if len(join.Using) > 0 {
			if err := w.recordUsing(join.Using, scope); err != nil {
				return err
			}
		}
		if join.Natural {
			w.recordNatural(right, scope)
		}
	}
	return nil
}

// addSource resolves one FROM source to a scope entry. Base tables are
// resolved through CTE definitions first, then the catalog.
func (w *walker) addSource(ref TableRef, scope *Scope) (*ScopeEntry, error) {
	switch src := ref.(type) {
	case *TableName:
		alias := src.Alias
		if alias == "" {
			alias = src.Name
		}

		if def, ok := scope.LookupCTE(src.Name); ok {
			entry := &ScopeEntry{
				Alias:        alias,
				Kind:         entryCTE,
				Columns:      def.Columns,
				ColumnsKnown: def.ColumnsKnown,
			}
			scope.AddEntry(entry)
			return entry, nil
		}

		canonical, columns, ok := w.catalog.Table(src.Name)
		if !ok {
			return nil, &ResolutionError{Message: fmt.Sprintf(errUnknownTable, src.Name)}
		}
		w.refs.AddTable(canonical)
		entry := &ScopeEntry{
			Alias:        alias,
			Kind:         entryTable,
			Table:        canonical,
			Columns:      columns,
			ColumnsKnown: true,
		}
		scope.AddEntry(entry)
		return entry, nil

	case *DerivedTable:
		// Derived tables see enclosing scopes but not sibling sources.
		cols, known, err := w.resolveStatement(src.Select, scope.parent)
		if err != nil {
			return nil, err
		}
		entry := &ScopeEntry{
			Alias:        src.Alias,
			Kind:         entryDerived,
			Columns:      cols,
			ColumnsKnown: known,
		}
		scope.AddEntry(entry)
		return entry, nil

	default:
		return nil, &ResolutionError{Message: "unsupported table reference"}
	}
}

// recordUsing records USING columns against every source in the scope that
// carries them, covering both sides of the join.
func (w *walker) recordUsing(using []string, scope *Scope) error {
	for _, col := range using {
		found := false
		for _, entry := range scope.Entries() {
			if canonical, ok := entry.HasColumn(col); ok {
				found = true
				if entry.Kind == entryTable {
					w.refs.AddColumn(entry.Table, canonical)
				}
			}
		}
		if !found {
			return &ResolutionError{Message: fmt.Sprintf(errUnknownColumn, col)}
		}
	}
	return nil
}

// recordNatural records the columns a NATURAL join equates: every column of
// the right source that also appears in an earlier source of the scope.
func (w *walker) recordNatural(right *ScopeEntry, scope *Scope) {
	for _, col := range right.Columns {
		key := NormalizeName(col)
		shared := false
		for _, entry := range scope.Entries() {
			if entry == right {
				continue
			}
			if canonical, ok := entry.columnIndex[key]; ok {
				shared = true
				if entry.Kind == entryTable {
					w.refs.AddColumn(entry.Table, canonical)
				}
			}
		}
		if shared && right.Kind == entryTable {
			w.refs.AddColumn(right.Table, col)
		}
	}
}

// unqualRef is a bare column reference. aliasOK marks references from
// clauses where a select-list alias may satisfy the name.
type unqualRef struct {
	column  string
	aliasOK bool
}

// refCollector gathers the column references, star projections, and
// subqueries of one SELECT core without descending into subqueries.
type refCollector struct {
	aliasOK     bool
	qualified   []*ColumnRef
	unqualified []unqualRef
	stars       []*StarExpr
	subqueries  []*SelectStmt
}

func (c *refCollector) walk(e Expr) {
	switch expr := e.(type) {
	case nil:
		return
	case *ColumnRef:
		if expr.Table != "" {
			c.qualified = append(c.qualified, expr)
		} else {
			c.unqualified = append(c.unqualified, unqualRef{column: expr.Column, aliasOK: c.aliasOK})
		}
	case *StarExpr:
		c.stars = append(c.stars, expr)
	case *Literal:
		return
	case *BinaryExpr:
		c.walk(expr.Left)
		c.walk(expr.Right)
	case *UnaryExpr:
		c.walk(expr.Expr)
	case *ParenExpr:
		c.walk(expr.Expr)
	case *FuncCall:
		for _, arg := range expr.Args {
			c.walk(arg)
		}
		c.walk(expr.Filter)
		if expr.Window != nil {
			for _, pb := range expr.Window.PartitionBy {
				c.walk(pb)
			}
			for _, ob := range expr.Window.OrderBy {
				c.walk(ob.Expr)
			}
		}
	case *CaseExpr:
		c.walk(expr.Operand)
		for _, when := range expr.Whens {
			c.walk(when.Condition)
			c.walk(when.Result)
		}
		c.walk(expr.Else)
	case *CastExpr:
		c.walk(expr.Expr)
	case *InExpr:
		c.walk(expr.Expr)
		for _, v := range expr.Values {
			c.walk(v)
		}
		if expr.Query != nil {
			c.subqueries = append(c.subqueries, expr.Query)
		}
	case *BetweenExpr:
		c.walk(expr.Expr)
		c.walk(expr.Low)
		c.walk(expr.High)
	case *IsNullExpr:
		c.walk(expr.Expr)
	case *LikeExpr:
		c.walk(expr.Expr)
		c.walk(expr.Pattern)
		c.walk(expr.Escape)
	case *SubqueryExpr:
		c.subqueries = append(c.subqueries, expr.Select)
	case *ExistsExpr:
		c.subqueries = append(c.subqueries, expr.Select)
	}
}

// resolveRefs resolves the collected references of one core. Qualified
// references go first so their qualifiers can break unqualified ties.
func (w *walker) resolveRefs(c *refCollector, scope *Scope, aliases map[string]bool) error {
	// qualifiedBy tracks, per normalized column name, which entries of the
	// current scope explicitly qualify that column somewhere in the core.
	qualifiedBy := make(map[string]map[*ScopeEntry]bool)

	for _, ref := range c.qualified {
		entry, ok := scope.LookupWalk(ref.Table)
		if !ok {
			return &ResolutionError{Message: fmt.Sprintf(errUnknownTable, ref.Table)}
		}
		if err := w.recordColumn(entry, ref.Column); err != nil {
			return err
		}
		key := NormalizeName(ref.Column)
		if qualifiedBy[key] == nil {
			qualifiedBy[key] = make(map[*ScopeEntry]bool)
		}
		qualifiedBy[key][entry] = true
	}

	for _, ref := range c.unqualified {
		if ref.aliasOK && aliases[NormalizeName(ref.column)] {
			// Select-list alias; the aliased expression already resolved.
			continue
		}
		if err := w.resolveUnqualified(ref.column, scope, qualifiedBy); err != nil {
			return err
		}
	}

	for _, star := range c.stars {
		if err := w.resolveStar(star, scope); err != nil {
			return err
		}
	}

	return nil
}

// resolveUnqualified resolves a bare column name, walking scopes nearest
// first. Sources with unknown outputs absorb names nothing else claims.
func (w *walker) resolveUnqualified(column string, scope *Scope, qualifiedBy map[string]map[*ScopeEntry]bool) error {
	key := NormalizeName(column)

	for cur := scope; cur != nil; cur = cur.parent {
		var candidates []*ScopeEntry
		hasOpaque := false
		for _, entry := range cur.Entries() {
			if _, ok := entry.HasColumn(column); ok {
				candidates = append(candidates, entry)
			} else if !entry.ColumnsKnown {
				hasOpaque = true
			}
		}

		switch {
		case len(candidates) == 1:
			return w.recordColumn(candidates[0], column)

		case len(candidates) > 1:
			// Tie-break: prefer the single candidate that also qualifies
			// this column explicitly in the same core.
			if cur == scope {
				var preferred *ScopeEntry
				for _, cand := range candidates {
					if qualifiedBy[key][cand] {
						if preferred != nil {
							preferred = nil
							break
						}
						preferred = cand
					}
				}
				if preferred != nil {
					return w.recordColumn(preferred, column)
				}
			}
			names := make([]string, len(candidates))
			for i, cand := range candidates {
				names[i] = cand.Alias
			}
			sort.Strings(names)
			return &ResolutionError{Message: fmt.Sprintf(errAmbiguousColumn, column, strings.Join(names, ", "))}

		case hasOpaque:
			// Exactly attributable to an unenumerable source; no base
			// column to record.
			return nil
		}
	}

	return &ResolutionError{Message: fmt.Sprintf(errUnknownColumn, column)}
}

// resolveStar applies a star projection: an unqualified star marks every
// base table in the core's scope, a qualified star marks one source.
func (w *walker) resolveStar(star *StarExpr, scope *Scope) error {
	if star.Table == "" {
		for _, entry := range scope.Entries() {
			if entry.Kind == entryTable {
				w.refs.MarkWildcard(entry.Table)
			}
		}
		return nil
	}

	entry, ok := scope.LookupWalk(star.Table)
	if !ok {
		return &ResolutionError{Message: fmt.Sprintf(errUnknownTable, star.Table)}
	}
	if entry.Kind == entryTable {
		w.refs.MarkWildcard(entry.Table)
	}
	return nil
}

// recordColumn records a resolved column against its source. Base tables
// validate and record; CTE and derived sources validate only, since their
// base usage was recorded when their bodies resolved.
func (w *walker) recordColumn(entry *ScopeEntry, column string) error {
	canonical, ok := entry.HasColumn(column)
	if !ok {
		if !entry.ColumnsKnown {
			return nil
		}
		return &ResolutionError{Message: fmt.Sprintf(errUnknownColumn, entry.Alias+"."+column)}
	}
	if entry.Kind == entryTable {
		w.refs.AddColumn(entry.Table, canonical)
	}
	return nil
}

// outputColumns derives the output column names of a SELECT core from its
// select list. Star projections make the output unenumerable.
func outputColumns(core *SelectCore) ([]string, bool) {
	var cols []string
	for _, item := range core.Columns {
		if item.Star || item.TableStar != "" {
			return nil, false
		}
		switch {
		case item.Alias != "":
			cols = append(cols, item.Alias)
		default:
			if ref, ok := item.Expr.(*ColumnRef); ok {
				cols = append(cols, ref.Column)
			}
		}
	}
	return cols, true
}
