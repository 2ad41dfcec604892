package graph

import (
	"strings"
	"testing"
)

func TestMergeNodeStatement(t *testing.T) {
	node := mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암"})
	stmt := MergeNodeStatement(node)

	if !strings.Contains(stmt.Query, "MERGE (n:Disease {id: $id})") {
		t.Fatalf("unexpected query: %s", stmt.Query)
	}
	if stmt.Params["id"] != node.ID {
		t.Fatalf("id param mismatch: %v", stmt.Params["id"])
	}
	if strings.Contains(stmt.Query, "$embedding") {
		t.Fatal("embedding SET emitted for node without a vector")
	}
}

func TestMergeNodeStatementWithEmbedding(t *testing.T) {
	node := mustNode(t, NodeClause, map[string]any{
		"text": "암 진단 시 보험금을 지급합니다", "article_num": "제1조", "paragraph_num": "①",
	}).WithEmbedding([]float32{0.1, 0.2})

	stmt := MergeNodeStatement(node)
	if !strings.Contains(stmt.Query, "SET n.embedding = $embedding") {
		t.Fatalf("embedding SET missing: %s", stmt.Query)
	}
	if _, ok := stmt.Params["embedding"]; !ok {
		t.Fatal("embedding param missing")
	}
}

func TestMergeRelationshipStatement(t *testing.T) {
	stmt := MergeRelationshipStatement(Relationship{
		Type: "EXCLUDES", SourceID: "Coverage:a", TargetID: "Disease:b",
		Confidence: 0.85,
		Properties: map[string]any{"exclusion_reason": "면책기간"},
	})

	if !strings.Contains(stmt.Query, "MERGE (a)-[r:EXCLUDES]->(b)") {
		t.Fatalf("unexpected query: %s", stmt.Query)
	}
	if stmt.Params["confidence"] != 0.85 {
		t.Fatalf("confidence param mismatch: %v", stmt.Params["confidence"])
	}
	// Values travel as parameters, never inline.
	if strings.Contains(stmt.Query, "면책기간") {
		t.Fatal("property value interpolated into the query text")
	}
}

func TestBatchStatementsOrdering(t *testing.T) {
	batch := NewBatch()
	coverage := mustNode(t, NodeCoverage, map[string]any{"name": "암진단특약"})
	disease := mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암"})
	batch.AddNode(disease)
	batch.AddNode(coverage)
	batch.AddRelationship(Relationship{
		Type: "COVERS", SourceID: coverage.ID, TargetID: disease.ID, Confidence: 0.9,
	})

	statements := BatchStatements(batch)
	if len(statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(statements))
	}

	// All node merges must precede relationship merges.
	sawRelationship := false
	for _, stmt := range statements {
		isRel := strings.Contains(stmt.Query, "MATCH (a")
		if isRel {
			sawRelationship = true
		} else if sawRelationship {
			t.Fatal("node merge emitted after a relationship merge")
		}
	}

	again := BatchStatements(batch)
	for i := range statements {
		if statements[i].Query != again[i].Query {
			t.Fatal("statement order is not stable across renders")
		}
	}
}
