package graph

// Node is one typed node in a batch. ID is always the deterministic
// content hash produced by NodeID; builders never assign surrogate keys.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`

	// Properties carries both identifying and descriptive properties.
	Properties map[string]any `json:"properties,omitempty"`

	// Embedding is the optional clause-text vector; only Clause nodes
	// carry one, and only when embeddings are enabled.
	Embedding []float32 `json:"embedding,omitempty"`
}

// NewNode creates a node of the given type, deriving its deterministic ID
// from the identifying subset of props. It fails when identifying
// properties are missing.
func NewNode(t NodeType, props map[string]any) (Node, error) {
	id, err := NodeID(t, props)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: id, Type: t, Properties: props}, nil
}

// WithEmbedding returns a copy of the node carrying the vector.
func (n Node) WithEmbedding(vec []float32) Node {
	n.Embedding = vec
	return n
}

// Product is the document-level metadata record accompanying each
// ingested text.
type Product struct {
	Name          string `json:"product_name"`
	Company       string `json:"company"`
	ProductType   string `json:"product_type"`
	Version       string `json:"version"`
	EffectiveDate string `json:"effective_date"`
	DocumentID    string `json:"document_id"`
}
