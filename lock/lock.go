// Package lock provides per-document mutual exclusion around graph
// persistence, so two pipeline instances ingesting the same document
// cannot interleave their batch writes. An in-process implementation
// covers single-node deployments and tests; the etcd implementation
// covers multi-instance deployments.
package lock

import "context"

// ReleaseFunc releases a held lock. It is safe to call once; callers
// should defer it immediately after a successful Acquire.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes work on a key. Acquire blocks until the lock is
// held or the context is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}
