package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// MockEmbedder is a deterministic in-process Embedder for tests. The
// vector for a text is derived from its SHA-256 digest, so equal texts
// always produce equal vectors and distinct texts almost never collide.
type MockEmbedder struct {
	dims int

	mu    sync.Mutex
	calls int
	err   error
}

// NewMockEmbedder creates a mock producing vectors of the given
// dimensionality.
func NewMockEmbedder(dims int) *MockEmbedder {
	if dims <= 0 {
		dims = 8
	}
	return &MockEmbedder{dims: dims}
}

// FailWith makes every subsequent call return err.
func (m *MockEmbedder) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many Embed/EmbedBatch invocations were made.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.vector(text), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int { return m.dims }

// vector expands the text digest into a unit-range vector. Each
// component is read from the digest stream, extended by re-hashing when
// the dimensionality outruns one digest.
func (m *MockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	digest := sha256.Sum256([]byte(text))
	buf := digest[:]
	for i := 0; i < m.dims; i++ {
		if len(buf) < 4 {
			next := sha256.Sum256(buf)
			buf = next[:]
		}
		raw := binary.BigEndian.Uint32(buf[:4])
		buf = buf[4:]
		vec[i] = float32(raw) / float32(math.MaxUint32)
	}
	return vec
}
