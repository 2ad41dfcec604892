package lock

import (
	"context"
	"fmt"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
)

// EtcdConfig configures an EtcdLocker.
type EtcdConfig struct {
	// Endpoints is the etcd cluster to connect to.
	Endpoints []string `yaml:"endpoints"`

	// Namespace prefixes every lock key; defaults to "covergraph".
	Namespace string `yaml:"namespace,omitempty"`

	// TTL is the session lease in seconds. A crashed holder's locks are
	// released after at most this long. Defaults to 30.
	TTL int `yaml:"ttl,omitempty"`
}

// EtcdLocker is a distributed Locker backed by etcd sessions. Each
// Acquire opens its own session so a release (or holder crash) never
// disturbs other held locks.
type EtcdLocker struct {
	client    *clientv3.Client
	namespace string
	ttl       int
}

// NewEtcdLocker connects to etcd and verifies connectivity.
func NewEtcdLocker(cfg EtcdConfig) (*EtcdLocker, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("lock endpoints cannot be empty")
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "covergraph"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &EtcdLocker{client: cli, namespace: namespace, ttl: ttl}, nil
}

// Acquire takes the distributed mutex for the key, blocking until it is
// held or ctx is done.
func (l *EtcdLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	session, err := concurrency.NewSession(l.client, concurrency.WithTTL(l.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create lock session: %w", err)
	}

	mutex := concurrency.NewMutex(session, path.Join("/", l.namespace, "locks", key))
	if err := mutex.Lock(ctx); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}

	release := func(ctx context.Context) error {
		defer session.Close()
		if err := mutex.Unlock(ctx); err != nil {
			return fmt.Errorf("failed to release lock %q: %w", key, err)
		}
		return nil
	}
	return release, nil
}

// Close releases the underlying etcd client.
func (l *EtcdLocker) Close() error {
	return l.client.Close()
}
