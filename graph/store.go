package graph

import (
	"context"
	"fmt"
)

// Store is the persistence boundary for graph batches. Implementations
// MUST use merge-on-id semantics (upsert, never unconditional create) and
// MUST apply the whole batch atomically: if any write fails, none of the
// batch is applied and the existing graph is left untouched.
//
// A property-graph store driven by parameterized MERGE statements (see
// cypher.go) is the reference target, but nothing store-specific leaks
// through this contract.
type Store interface {
	// Persist writes the batch in one atomic transaction and returns the
	// per-type count summary. Failures are reported as *PersistenceError.
	Persist(ctx context.Context, batch *Batch) (Stats, error)
}

// PersistenceError reports a failed batch write. It is the only error
// class that aborts ingestion of a document: the batch was rolled back
// and the caller must retry the document as a whole.
type PersistenceError struct {
	// Op is the store operation that failed.
	Op string

	// Err is the underlying store error.
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("graph persistence failed: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
