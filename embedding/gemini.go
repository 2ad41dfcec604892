package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultGeminiEmbedModel is the embedding model used when none is
// configured.
const DefaultGeminiEmbedModel = "gemini-embedding-001"

// DefaultDimensions is the default output dimensionality requested from
// the embedding model.
const DefaultDimensions = 768

// GeminiEmbedder generates clause vectors with the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
	logger *slog.Logger
}

// GeminiOption configures a GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder)

// WithModel overrides the embedding model name.
func WithModel(model string) GeminiOption {
	return func(e *GeminiEmbedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithDimensions overrides the requested output dimensionality.
func WithDimensions(dims int) GeminiOption {
	return func(e *GeminiEmbedder) {
		if dims > 0 {
			e.dims = dims
		}
	}
}

// WithLogger sets the logger for embedding diagnostics.
func WithLogger(logger *slog.Logger) GeminiOption {
	return func(e *GeminiEmbedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API.
func NewGeminiEmbedder(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: failed to create client: %w", err)
	}

	e := &GeminiEmbedder{
		client: client,
		model:  DefaultGeminiEmbedModel,
		dims:   DefaultDimensions,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	outputDim := int32(e.dims)
	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	return result.Embeddings[0].Values, nil
}

// EmbedBatch embeds each text sequentially. The API accepts multiple
// contents per call but attributes only one embedding per request for
// this model, so per-text calls keep the index alignment obvious.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding %d of %d failed: %w", i+1, len(texts), err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *GeminiEmbedder) Dimensions() int { return e.dims }
