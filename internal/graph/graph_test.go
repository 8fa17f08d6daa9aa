package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchforge/goldgraph/internal/schema"
	"github.com/benchforge/goldgraph/pkg/sqlref"
)

func shopSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Build(&schema.RawDatabase{
		DBID:               "shop",
		TableNamesOriginal: []string{"orders", "order_items", "products"},
		ColumnNamesOriginal: []schema.ColumnName{
			{TableIndex: -1, Name: "*"},
			{TableIndex: 0, Name: "id"},
			{TableIndex: 0, Name: "customer_id"},
			{TableIndex: 0, Name: "total"},
			{TableIndex: 1, Name: "id"},
			{TableIndex: 1, Name: "order_id"},
			{TableIndex: 1, Name: "product_id"},
			{TableIndex: 2, Name: "id"},
			{TableIndex: 2, Name: "name"},
		},
		ColumnDescriptions: []string{
			"", "order key", "owning customer", "order total",
			"line key", "owning order", "purchased product",
			"product key", "product name",
		},
		ForeignKeys: []schema.ForeignKeyPair{
			{ChildIndex: 5, ParentIndex: 1},
			{ChildIndex: 6, ParentIndex: 7},
		},
		ForeignKeyDescriptions: []schema.FKDescription{
			{Summary: "order_items.order_id references orders.id."},
			{Summary: "order_items.product_id references products.id."},
		},
	})
	require.NoError(t, err)
	return s
}

func resolve(t *testing.T, s *schema.Schema, sql string) *sqlref.ReferenceSet {
	t.Helper()
	refs, err := sqlref.Resolve(sql, s.Catalog())
	require.NoError(t, err)
	return refs
}

func TestBuildEndToEnd(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT o.id FROM orders o JOIN order_items oi ON o.id = oi.order_id")

	g, err := Build(refs, s)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "orders", g.Nodes[0].TableName)
	assert.Equal(t, "order_items", g.Nodes[1].TableName)

	require.Len(t, g.Edges, 1)
	edge := g.Edges[0]
	assert.Equal(t, "order_items", edge.ChildTable)
	assert.Equal(t, "order_id", edge.ChildColumn)
	assert.Equal(t, "orders", edge.ParentTable)
	assert.Equal(t, "id", edge.ParentColumn)
	assert.Equal(t, "order_items.order_id references orders.id.", edge.Description)
}

func TestBuildReferencedColumnsOnly(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT total FROM orders WHERE customer_id = 5")

	g, err := Build(refs, s)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	names := []string{}
	for _, c := range g.Nodes[0].Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"total", "customer_id"}, names)
	assert.Equal(t, "order total", g.Nodes[0].Columns[0].Description)
}

func TestBuildWildcardListsAllColumns(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT * FROM orders")

	g, err := Build(refs, s)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	names := []string{}
	for _, c := range g.Nodes[0].Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "customer_id", "total"}, names)
}

func TestBuildBareTableListsAllColumns(t *testing.T) {
	s := shopSchema(t)
	refs := sqlref.NewReferenceSet()
	refs.AddTable("products")

	g, err := Build(refs, s)
	require.NoError(t, err)
	assert.Len(t, g.Nodes[0].Columns, 2)
}

func TestBuildEdgesRequireBothEnds(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT total FROM orders")

	g, err := Build(refs, s)
	require.NoError(t, err)
	assert.Empty(t, g.Edges)
}

func TestBuildEdgeNodesSubsetInvariant(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, `
		SELECT o.total, p.name
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id`)

	g, err := Build(refs, s)
	require.NoError(t, err)

	tables := make(map[string]bool)
	for _, n := range g.Nodes {
		tables[n.TableName] = true
	}
	for _, e := range g.Edges {
		assert.True(t, tables[e.ChildTable], "edge child %s has no node", e.ChildTable)
		assert.True(t, tables[e.ParentTable], "edge parent %s has no node", e.ParentTable)
	}
	assert.Len(t, g.Edges, 2)
}

func TestBuildDeterministic(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT o.id FROM orders o JOIN order_items oi ON o.id = oi.order_id")

	g1, err := Build(refs, s)
	require.NoError(t, err)
	g2, err := Build(refs, s)
	require.NoError(t, err)
	assert.Equal(t, g1, g2)
}

func TestBuildUnknownTableIsFatal(t *testing.T) {
	s := shopSchema(t)
	refs := sqlref.NewReferenceSet()
	refs.AddTable("ghosts")

	_, err := Build(refs, s)
	var ae *AssemblyError
	require.ErrorAs(t, err, &ae)
}

func TestContextText(t *testing.T) {
	s := shopSchema(t)
	refs := resolve(t, s, "SELECT o.total FROM orders o JOIN order_items oi ON oi.order_id = o.id")

	g, err := Build(refs, s)
	require.NoError(t, err)

	text := g.ContextText()
	assert.Contains(t, text, "Table orders: total: order total")
	assert.Contains(t, text, "Relationships:")
	assert.Contains(t, text, "order_items.order_id → orders.id (order_items.order_id references orders.id.)")
}

func TestEmptyGraphSerializesAsArrays(t *testing.T) {
	g := Empty()
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)
	assert.Empty(t, g.Nodes)
}
