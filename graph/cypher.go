package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Statement is one parameterized graph-store statement. Values travel as
// parameters, never interpolated, to keep generated Cypher injection-safe.
type Statement struct {
	Query  string
	Params map[string]any
}

// MergeNodeStatement generates a parameterized MERGE for a node, keyed on
// its deterministic ID. Re-running the statement with the same node is a
// no-op apart from refreshing descriptive properties:
//
//	MERGE (n:Clause {id: $id}) SET n += $props
func MergeNodeStatement(n Node) Statement {
	params := map[string]any{
		"id":    n.ID,
		"props": n.Properties,
	}
	query := fmt.Sprintf("MERGE (n:%s {id: $id}) SET n += $props", n.Type)

	if len(n.Embedding) > 0 {
		params["embedding"] = n.Embedding
		query += " SET n.embedding = $embedding"
	}
	return Statement{Query: query, Params: params}
}

// MergeRelationshipStatement generates a parameterized MERGE for an edge
// between two already-merged nodes:
//
//	MATCH (a {id: $source_id}), (b {id: $target_id})
//	MERGE (a)-[r:COVERS]->(b) SET r.confidence = $confidence, r += $props
func MergeRelationshipStatement(r Relationship) Statement {
	return Statement{
		Query: fmt.Sprintf(
			"MATCH (a {id: $source_id}), (b {id: $target_id}) MERGE (a)-[r:%s]->(b) SET r.confidence = $confidence, r += $props",
			r.Type),
		Params: map[string]any{
			"source_id":  r.SourceID,
			"target_id":  r.TargetID,
			"confidence": r.Confidence,
			"props":      nonNilProps(r.Properties),
		},
	}
}

// BatchStatements renders the whole batch as an ordered statement list —
// all node merges first, then relationship merges — for execution inside
// a single store transaction. Node statements are ordered by type then ID
// so the output is stable for a given batch.
func BatchStatements(b *Batch) []Statement {
	nodes := append([]Node(nil), b.Nodes()...)
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Type != nodes[j].Type {
			return nodes[i].Type < nodes[j].Type
		}
		return nodes[i].ID < nodes[j].ID
	})

	statements := make([]Statement, 0, len(nodes)+len(b.Relationships()))
	for _, n := range nodes {
		statements = append(statements, MergeNodeStatement(n))
	}

	rels := append([]Relationship(nil), b.Relationships()...)
	sort.Slice(rels, func(i, j int) bool {
		return strings.Compare(rels[i].Key(), rels[j].Key()) < 0
	})
	for _, r := range rels {
		statements = append(statements, MergeRelationshipStatement(r))
	}
	return statements
}

func nonNilProps(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
