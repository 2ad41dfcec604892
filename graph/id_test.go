package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestNodeIDDeterministic(t *testing.T) {
	props := map[string]any{
		"product_name": "무배당 암보험",
		"company":      "한국생명",
		"version":      "2024-01",
	}

	id1, err := NodeID(NodeProduct, props)
	if err != nil {
		t.Fatalf("NodeID failed: %v", err)
	}
	id2, err := NodeID(NodeProduct, props)
	if err != nil {
		t.Fatalf("NodeID failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("same content produced different IDs: %s vs %s", id1, id2)
	}
	if !strings.HasPrefix(id1, "Product:") {
		t.Fatalf("ID missing type prefix: %s", id1)
	}
}

func TestNodeIDNormalizesStrings(t *testing.T) {
	a, err := NodeID(NodeCoverage, map[string]any{"name": "암진단특약"})
	if err != nil {
		t.Fatalf("NodeID failed: %v", err)
	}
	b, err := NodeID(NodeCoverage, map[string]any{"name": "  암진단특약  "})
	if err != nil {
		t.Fatalf("NodeID failed: %v", err)
	}
	if a != b {
		t.Fatal("whitespace variants produced different IDs")
	}

	upper, _ := NodeID(NodeDisease, map[string]any{"standard_name": "Thyroid Cancer"})
	lower, _ := NodeID(NodeDisease, map[string]any{"standard_name": "thyroid cancer"})
	if upper != lower {
		t.Fatal("case variants produced different IDs")
	}
}

func TestNodeIDIgnoresDescriptiveProperties(t *testing.T) {
	base := map[string]any{"standard_name": "갑상선암"}
	enriched := map[string]any{
		"standard_name": "갑상선암",
		"category":      "암",
		"severity":      "소액암",
	}

	a, _ := NodeID(NodeDisease, base)
	b, _ := NodeID(NodeDisease, enriched)
	if a != b {
		t.Fatal("descriptive properties leaked into the identifying hash")
	}
}

func TestNodeIDMissingProperties(t *testing.T) {
	_, err := NodeID(NodeClause, map[string]any{"text": "본 계약은..."})
	if !errors.Is(err, ErrMissingIdentifyingProperties) {
		t.Fatalf("expected ErrMissingIdentifyingProperties, got %v", err)
	}

	// Empty strings count as missing.
	_, err = NodeID(NodeCoverage, map[string]any{"name": "   "})
	if !errors.Is(err, ErrMissingIdentifyingProperties) {
		t.Fatalf("expected ErrMissingIdentifyingProperties for blank value, got %v", err)
	}
}

func TestNodeIDUnregisteredType(t *testing.T) {
	_, err := NodeID(NodeType("Premium"), map[string]any{"name": "x"})
	if !errors.Is(err, ErrNodeTypeNotRegistered) {
		t.Fatalf("expected ErrNodeTypeNotRegistered, got %v", err)
	}
}

func TestNodeIDDistinctTypesDistinctIDs(t *testing.T) {
	coverage, _ := NodeID(NodeCoverage, map[string]any{"name": "암진단"})
	disease, _ := NodeID(NodeDisease, map[string]any{"standard_name": "암진단"})
	if coverage == disease {
		t.Fatal("different node types collided on the same content")
	}
}
