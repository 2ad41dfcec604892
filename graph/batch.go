package graph

// Batch is the complete in-memory graph for one document, built fully
// before persistence and discarded afterwards. Nodes and relationships
// are deduplicated on insertion by their content-derived identity, so
// merge order never affects the final batch.
type Batch struct {
	nodes     []Node
	nodeIndex map[string]int

	relationships []Relationship
	relIndex      map[string]int
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{
		nodeIndex: make(map[string]int),
		relIndex:  make(map[string]int),
	}
}

// AddNode merges a node into the batch. A node with an already-present
// ID replaces the existing entry (last write wins within a batch, which
// only matters for descriptive properties — identifying content is equal
// by construction).
func (b *Batch) AddNode(n Node) {
	if idx, ok := b.nodeIndex[n.ID]; ok {
		b.nodes[idx] = n
		return
	}
	b.nodeIndex[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

// AddRelationship merges an edge into the batch, deduplicated by
// (type, source, target).
func (b *Batch) AddRelationship(r Relationship) {
	key := r.Key()
	if idx, ok := b.relIndex[key]; ok {
		b.relationships[idx] = r
		return
	}
	b.relIndex[key] = len(b.relationships)
	b.relationships = append(b.relationships, r)
}

// Nodes returns the deduplicated nodes in insertion order.
func (b *Batch) Nodes() []Node { return b.nodes }

// Relationships returns the deduplicated edges in insertion order.
func (b *Batch) Relationships() []Relationship { return b.relationships }

// Stats computes the per-type count summary for the batch.
func (b *Batch) Stats() Stats {
	stats := Stats{
		TotalNodes:          len(b.nodes),
		TotalRelationships:  len(b.relationships),
		NodesByType:         make(map[string]int),
		RelationshipsByType: make(map[string]int),
	}
	for _, n := range b.nodes {
		stats.NodesByType[string(n.Type)]++
	}
	for _, r := range b.relationships {
		stats.RelationshipsByType[r.Type]++
	}
	return stats
}

// Stats is the count summary returned by a successful persist.
type Stats struct {
	TotalNodes          int            `json:"total_nodes"`
	TotalRelationships  int            `json:"total_relationships"`
	NodesByType         map[string]int `json:"nodes_by_type"`
	RelationshipsByType map[string]int `json:"relationships_by_type"`
}
