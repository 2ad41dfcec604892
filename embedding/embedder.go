// Package embedding provides clause-text vector generation for the
// policy graph, with a Gemini-backed implementation and an optional
// Redis cache layered over any Embedder.
package embedding

import "context"

// Embedder produces dense vectors for clause text. Implementations must
// return vectors of a fixed dimensionality for the lifetime of the
// instance.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, index-aligned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the vector dimensionality.
	Dimensions() int
}
