// Package llm defines the language-model interface consumed by the
// relation extraction stage, plus provider implementations for the two
// configured tiers (a low-cost model and a high-accuracy model) and a
// deterministic mock for offline testing.
package llm

import "context"

// Request is one completion request. The caller's context bounds the
// call; providers do not apply their own timeouts.
type Request struct {
	// Prompt is the full prompt text, instructions included.
	Prompt string

	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64

	// MaxTokens caps the generated output. Zero means provider default.
	MaxTokens int
}

// Response is a completed generation.
type Response struct {
	// Text is the raw generated text.
	Text string

	// ModelName identifies the model that produced the text.
	ModelName string

	// Confidence is the provider-level confidence in [0,1]. Providers
	// that expose no native signal report 1.0 for a normally finished
	// generation and less for truncated ones.
	Confidence float64
}

// Client is a single model tier.
type Client interface {
	// Complete runs one completion. Cancellation and deadlines come from ctx.
	Complete(ctx context.Context, req Request) (Response, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// Tiers bundles the two configured model tiers used by the extraction
// cascade: the low-cost model is asked first and the high-accuracy model
// only on escalation.
type Tiers struct {
	LowCost      Client
	HighAccuracy Client
}
