// Package graph assembles resolved reference sets into gold graphs: the
// persisted node/edge artifact describing which tables and foreign-key
// joins a benchmark query touches.
package graph

import (
	"fmt"
	"strings"

	"github.com/benchforge/goldgraph/internal/schema"
	"github.com/benchforge/goldgraph/pkg/sqlref"
)

// AssemblyError reports an internal invariant violation: the reference set
// names something its schema does not carry. This can only arise from a
// resolver bug, so it is fatal rather than a per-example failure.
type AssemblyError struct {
	Message string
}

func (e *AssemblyError) Error() string {
	return "assembly error: " + e.Message
}

// NodeColumn is one column of a graph node, with its schema description.
type NodeColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Node is one referenced table with its column listing.
type Node struct {
	TableName string       `json:"table_name"`
	Columns   []NodeColumn `json:"columns"`
}

// Edge is one foreign-key relationship between two referenced tables.
type Edge struct {
	ChildTable   string `json:"child_table"`
	ChildColumn  string `json:"child_column"`
	ParentTable  string `json:"parent_table"`
	ParentColumn string `json:"parent_column"`
	Description  string `json:"description"`
}

// GoldGraph is the per-question artifact: nodes in first-appearance order
// and edges in schema declaration order.
type GoldGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty returns a graph that serializes as empty arrays, used for examples
// whose resolution failed recoverably.
func Empty() *GoldGraph {
	return &GoldGraph{Nodes: []Node{}, Edges: []Edge{}}
}

// Build assembles the gold graph for one resolved reference set. The result
// is deterministic: building twice from the same inputs yields identical
// node and edge ordering.
func Build(refs *sqlref.ReferenceSet, s *schema.Schema) (*GoldGraph, error) {
	g := Empty()
	referenced := make(map[string]bool, len(refs.Tables))

	for _, use := range refs.Tables {
		t, ok := s.Table(use.Name)
		if !ok {
			return nil, &AssemblyError{Message: fmt.Sprintf("resolved table %q not in schema %s", use.Name, s.DBID)}
		}
		referenced[t.Name] = true

		node := Node{TableName: t.Name, Columns: []NodeColumn{}}
		if len(use.Columns) > 0 && !use.Wildcard {
			for _, name := range use.Columns {
				col, ok := t.Column(name)
				if !ok {
					return nil, &AssemblyError{
						Message: fmt.Sprintf("resolved column %s.%s not in schema %s", t.Name, name, s.DBID),
					}
				}
				node.Columns = append(node.Columns, NodeColumn{Name: col.Name, Description: col.Description})
			}
		} else {
			// Wildcard projections and bare table references carry the
			// table's full column list.
			for _, col := range t.Columns {
				node.Columns = append(node.Columns, NodeColumn{Name: col.Name, Description: col.Description})
			}
		}
		g.Nodes = append(g.Nodes, node)
	}

	// Every schema foreign key whose two ends are both referenced becomes
	// an edge, regardless of the query's actual join predicates.
	seen := make(map[[4]string]bool)
	for _, fk := range s.ForeignKeys {
		if !referenced[fk.ChildTable.Name] || !referenced[fk.ParentTable.Name] {
			continue
		}
		key := [4]string{fk.ChildTable.Name, fk.ChildColumn.Name, fk.ParentTable.Name, fk.ParentColumn.Name}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Edges = append(g.Edges, Edge{
			ChildTable:   fk.ChildTable.Name,
			ChildColumn:  fk.ChildColumn.Name,
			ParentTable:  fk.ParentTable.Name,
			ParentColumn: fk.ParentColumn.Name,
			Description:  fk.Description,
		})
	}

	return g, nil
}

// ContextText renders the graph as the flat text block embedded in model
// prompts: one line per table, then one line per relationship.
func (g *GoldGraph) ContextText() string {
	var lines []string
	for _, n := range g.Nodes {
		parts := make([]string, len(n.Columns))
		for i, c := range n.Columns {
			if c.Description != "" {
				parts[i] = c.Name + ": " + c.Description
			} else {
				parts[i] = c.Name
			}
		}
		lines = append(lines, fmt.Sprintf("Table %s: %s", n.TableName, strings.Join(parts, ", ")))
	}
	if len(g.Edges) > 0 {
		lines = append(lines, "Relationships:")
		for _, e := range g.Edges {
			desc := ""
			if e.Description != "" {
				desc = " (" + e.Description + ")"
			}
			lines = append(lines, fmt.Sprintf("%s.%s → %s.%s%s",
				e.ChildTable, e.ChildColumn, e.ParentTable, e.ParentColumn, desc))
		}
	}
	return strings.Join(lines, "\n")
}
