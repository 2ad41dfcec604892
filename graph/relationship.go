package graph

// Structural relationship types created by the builder alongside the
// model-extracted coverage actions.
const (
	RelHasClause    = "HAS_CLAUSE"
	RelHasCoverage  = "HAS_COVERAGE"
	RelHasCondition = "HAS_CONDITION"
	RelDefinedIn    = "DEFINED_IN"
)

// Relationship is a typed, directed edge between two nodes in a batch.
// The relation's action (COVERS, EXCLUDES, ...) becomes the relationship
// type for coverage-disease edges.
type Relationship struct {
	Type     string `json:"relation_type"`
	SourceID string `json:"source_node_id"`
	TargetID string `json:"target_node_id"`

	// Confidence carries the extraction confidence for model-derived
	// edges; structural edges report 1.0.
	Confidence float64 `json:"confidence"`

	// Properties is a free-form map, e.g. exclusion_reason on EXCLUDES.
	Properties map[string]any `json:"properties,omitempty"`
}

// Key returns the deduplication key for merge semantics: two
// relationships with the same type and endpoints are the same edge.
func (r Relationship) Key() string {
	return r.Type + "|" + r.SourceID + "|" + r.TargetID
}
