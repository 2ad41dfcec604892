package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

const defaultAnthropicMaxTokens = 4096

// AnthropicClient implements Client using the Anthropic Messages API.
// It is typically configured as the high-accuracy tier.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates a client for the given model. An empty model
// selects DefaultAnthropicModel.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultAnthropicMaxTokens,
	}, nil
}

// Complete runs one completion against the Messages API.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic completion failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		// ContentBlockUnion.Type is a plain string in the v1 SDK.
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("anthropic returned no text content")
	}

	confidence := 1.0
	if resp.StopReason == anthropic.StopReasonMaxTokens {
		// Truncated output is likely malformed JSON downstream.
		confidence = 0.5
	}

	return Response{
		Text:       text.String(),
		ModelName:  c.model,
		Confidence: confidence,
	}, nil
}

// ModelName returns the configured model identifier.
func (c *AnthropicClient) ModelName() string { return c.model }
