package graph

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store with merge-by-id semantics. It
// backs offline tests and doubles as the reference implementation of the
// atomicity contract: the batch is validated in full before any state
// changes, so a failed persist leaves the store untouched.
type MemoryStore struct {
	mu            sync.Mutex
	nodes         map[string]Node
	relationships map[string]Relationship
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:         make(map[string]Node),
		relationships: make(map[string]Relationship),
	}
}

// Persist merges the batch into the store atomically.
func (s *MemoryStore) Persist(ctx context.Context, batch *Batch) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, &PersistenceError{Op: "MemoryStore.Persist", Err: err}
	}
	if batch == nil {
		return Stats{}, &PersistenceError{Op: "MemoryStore.Persist", Err: fmt.Errorf("nil batch")}
	}

	// Validate everything before touching state so a bad batch cannot be
	// half-applied.
	for _, n := range batch.Nodes() {
		if n.ID == "" || n.Type == "" {
			return Stats{}, &PersistenceError{
				Op:  "MemoryStore.Persist",
				Err: fmt.Errorf("node missing id or type: %+v", n),
			}
		}
	}
	nodeIDs := make(map[string]bool, len(batch.Nodes()))
	for _, n := range batch.Nodes() {
		nodeIDs[n.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range batch.Relationships() {
		if !nodeIDs[r.SourceID] && s.nodes[r.SourceID].ID == "" {
			return Stats{}, &PersistenceError{
				Op:  "MemoryStore.Persist",
				Err: fmt.Errorf("relationship %s references unknown source %s", r.Type, r.SourceID),
			}
		}
		if !nodeIDs[r.TargetID] && s.nodes[r.TargetID].ID == "" {
			return Stats{}, &PersistenceError{
				Op:  "MemoryStore.Persist",
				Err: fmt.Errorf("relationship %s references unknown target %s", r.Type, r.TargetID),
			}
		}
	}

	for _, n := range batch.Nodes() {
		s.nodes[n.ID] = n // merge-by-id: same content hash, same node
	}
	for _, r := range batch.Relationships() {
		s.relationships[r.Key()] = r
	}

	return batch.Stats(), nil
}

// NodeCount returns the number of distinct nodes in the store.
func (s *MemoryStore) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// RelationshipCount returns the number of distinct edges in the store.
func (s *MemoryStore) RelationshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.relationships)
}

// Node returns a stored node by ID.
func (s *MemoryStore) Node(id string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	return n, ok
}
