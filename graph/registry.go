// Package graph defines the typed knowledge-graph model for policy
// documents — product, clause, coverage, disease and condition nodes plus
// typed relationships — and assembles them into batches that persist
// idempotently. Every node ID is a deterministic hash of the node's
// identifying content, so re-running the pipeline on an unchanged
// document merges instead of duplicating.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NodeType enumerates the node labels of the policy graph.
type NodeType string

// The closed set of node types.
const (
	NodeProduct   NodeType = "Product"
	NodeClause    NodeType = "Clause"
	NodeCoverage  NodeType = "Coverage"
	NodeDisease   NodeType = "Disease"
	NodeCondition NodeType = "Condition"
)

// Sentinel errors for registry operations.
var (
	// ErrNodeTypeNotRegistered indicates the requested node type is not
	// part of the schema.
	ErrNodeTypeNotRegistered = errors.New("node type not registered")

	// ErrMissingIdentifyingProperties indicates one or more identifying
	// properties required for ID generation are absent.
	ErrMissingIdentifyingProperties = errors.New("missing identifying properties")
)

// identifyingProperties maps each node type to the property names that
// uniquely identify a node of that type. These form the natural key for
// deduplication and the input to deterministic ID generation:
//
//   - a Product is identified by its name, company and version
//   - a Clause by its text plus article/paragraph markers
//   - a Coverage by its name
//   - a Disease by its canonical standard name (never the surface text)
//   - a Condition by its (type, description) pair
var identifyingProperties = map[NodeType][]string{
	NodeProduct:   {"product_name", "company", "version"},
	NodeClause:    {"text", "article_num", "paragraph_num"},
	NodeCoverage:  {"name"},
	NodeDisease:   {"standard_name"},
	NodeCondition: {"condition_type", "description"},
}

// IdentifyingProperties returns the identifying property names for a node
// type, sorted for canonical ordering.
func IdentifyingProperties(t NodeType) ([]string, error) {
	props, ok := identifyingProperties[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeTypeNotRegistered, t)
	}
	sorted := append([]string(nil), props...)
	sort.Strings(sorted)
	return sorted, nil
}

// ValidateProperties checks that every identifying property for the node
// type is present and non-empty in props. It returns the missing names
// alongside ErrMissingIdentifyingProperties when validation fails.
func ValidateProperties(t NodeType, props map[string]any) ([]string, error) {
	required, err := IdentifyingProperties(t)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range required {
		val, ok := props[name]
		if !ok || val == nil {
			missing = append(missing, name)
			continue
		}
		if s, isString := val.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return missing, fmt.Errorf("%w for %q: %v", ErrMissingIdentifyingProperties, t, missing)
	}
	return nil, nil
}
