package graph

import (
	"context"
	"errors"
	"testing"
)

func mustNode(t *testing.T, nt NodeType, props map[string]any) Node {
	t.Helper()
	n, err := NewNode(nt, props)
	if err != nil {
		t.Fatalf("NewNode(%s) failed: %v", nt, err)
	}
	return n
}

func TestBatchDeduplicatesNodes(t *testing.T) {
	batch := NewBatch()
	a := mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암"})
	b := mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암", "severity": "소액암"})

	batch.AddNode(a)
	batch.AddNode(b)

	nodes := batch.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node after dedup, got %d", len(nodes))
	}
	// Last write wins for descriptive properties.
	if nodes[0].Properties["severity"] != "소액암" {
		t.Fatal("second insert did not refresh descriptive properties")
	}
}

func TestBatchDeduplicatesRelationships(t *testing.T) {
	batch := NewBatch()
	rel := Relationship{Type: "COVERS", SourceID: "Coverage:a", TargetID: "Disease:b", Confidence: 0.8}

	batch.AddRelationship(rel)
	rel.Confidence = 0.9
	batch.AddRelationship(rel)

	rels := batch.Relationships()
	if len(rels) != 1 {
		t.Fatalf("expected 1 relationship after dedup, got %d", len(rels))
	}
	if rels[0].Confidence != 0.9 {
		t.Fatalf("expected refreshed confidence 0.9, got %v", rels[0].Confidence)
	}
}

func TestBatchStats(t *testing.T) {
	batch := NewBatch()
	batch.AddNode(mustNode(t, NodeCoverage, map[string]any{"name": "암진단특약"}))
	batch.AddNode(mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암"}))
	batch.AddNode(mustNode(t, NodeDisease, map[string]any{"standard_name": "위암"}))
	batch.AddRelationship(Relationship{Type: "COVERS", SourceID: "a", TargetID: "b"})

	stats := batch.Stats()
	if stats.TotalNodes != 3 {
		t.Fatalf("expected 3 nodes, got %d", stats.TotalNodes)
	}
	if stats.NodesByType["Disease"] != 2 {
		t.Fatalf("expected 2 Disease nodes, got %d", stats.NodesByType["Disease"])
	}
	if stats.RelationshipsByType["COVERS"] != 1 {
		t.Fatalf("expected 1 COVERS edge, got %d", stats.RelationshipsByType["COVERS"])
	}
}

func TestMemoryStoreIdempotentPersist(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	buildBatch := func() *Batch {
		batch := NewBatch()
		coverage := mustNode(t, NodeCoverage, map[string]any{"name": "암진단특약"})
		disease := mustNode(t, NodeDisease, map[string]any{"standard_name": "갑상선암"})
		batch.AddNode(coverage)
		batch.AddNode(disease)
		batch.AddRelationship(Relationship{
			Type: "COVERS", SourceID: coverage.ID, TargetID: disease.ID, Confidence: 0.9,
		})
		return batch
	}

	first, err := store.Persist(ctx, buildBatch())
	if err != nil {
		t.Fatalf("first persist failed: %v", err)
	}
	second, err := store.Persist(ctx, buildBatch())
	if err != nil {
		t.Fatalf("second persist failed: %v", err)
	}

	if first.TotalNodes != second.TotalNodes {
		t.Fatalf("stats differ across identical persists: %d vs %d", first.TotalNodes, second.TotalNodes)
	}
	if store.NodeCount() != 2 {
		t.Fatalf("re-persisting the same batch duplicated nodes: %d", store.NodeCount())
	}
	if store.RelationshipCount() != 1 {
		t.Fatalf("re-persisting the same batch duplicated edges: %d", store.RelationshipCount())
	}
}

func TestMemoryStoreAtomicFailure(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	batch := NewBatch()
	batch.AddNode(mustNode(t, NodeCoverage, map[string]any{"name": "암진단특약"}))
	batch.AddRelationship(Relationship{
		Type: "COVERS", SourceID: "Coverage:nope", TargetID: "Disease:missing",
	})

	_, err := store.Persist(ctx, batch)
	if err == nil {
		t.Fatal("expected persist to fail on dangling endpoint")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %T", err)
	}
	if store.NodeCount() != 0 {
		t.Fatalf("failed persist leaked %d nodes into the store", store.NodeCount())
	}
}

func TestMemoryStoreResolvesEndpointsAcrossBatches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	coverage := mustNode(t, NodeCoverage, map[string]any{"name": "암진단특약"})
	first := NewBatch()
	first.AddNode(coverage)
	if _, err := store.Persist(ctx, first); err != nil {
		t.Fatalf("first persist failed: %v", err)
	}

	disease := mustNode(t, NodeDisease, map[string]any{"standard_name": "위암"})
	second := NewBatch()
	second.AddNode(disease)
	second.AddRelationship(Relationship{
		Type: "COVERS", SourceID: coverage.ID, TargetID: disease.ID, Confidence: 1.0,
	})
	if _, err := store.Persist(ctx, second); err != nil {
		t.Fatalf("edge to previously stored node rejected: %v", err)
	}
}
