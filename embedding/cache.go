package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long cached vectors live. Clause text is
// immutable per document version, so a long TTL is safe.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CachedEmbedder wraps an Embedder with a Redis read-through cache keyed
// on the SHA-256 of the text. Cache failures degrade to the inner
// embedder rather than failing the request.
type CachedEmbedder struct {
	inner  Embedder
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a CachedEmbedder.
type CacheOption func(*CachedEmbedder)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedEmbedder) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for cache diagnostics.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedEmbedder) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedEmbedder wraps inner with a Redis cache.
func NewCachedEmbedder(inner Embedder, client redis.UniversalClient, opts ...CacheOption) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, fmt.Errorf("cached embedder: inner embedder is required")
	}
	if client == nil {
		return nil, fmt.Errorf("cached embedder: redis client is required")
	}
	c := &CachedEmbedder{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if vec, ok := c.lookup(ctx, key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, vec)
	return vec, nil
}

// EmbedBatch resolves cache hits first, then embeds only the misses in
// one inner batch call and backfills the cache.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		if vec, ok := c.lookup(ctx, cacheKey(text)); ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		vectors[idx] = fresh[j]
		c.store(ctx, cacheKey(missTexts[j]), fresh[j])
	}
	return vectors, nil
}

func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("embedding cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		c.logger.Warn("embedding cache entry corrupt, discarding", "key", key, "error", err)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) store(ctx context.Context, key string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		c.logger.Warn("embedding cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("embedding cache write failed", "key", key, "error", err)
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}
