package relation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/covergraph/sdk/critical"
	"github.com/covergraph/sdk/llm"
)

// Cascade defaults. Both thresholds are carried over from the original
// tuning and are configurable rather than re-derived.
const (
	// DefaultEscalationThreshold is the self-reported confidence below
	// which the low-cost result is discarded and the clause is re-issued
	// to the high-accuracy model. The escalation is one-shot: never more
	// than two model calls per clause.
	DefaultEscalationThreshold = 0.70

	// DefaultAmountTolerance is the maximum relative difference under
	// which a model-proposed payment amount is silently corrected to the
	// closest extracted amount.
	DefaultAmountTolerance = 0.10
)

// Extractor runs the tiered extraction cascade for one clause at a time.
// It holds only immutable configuration and is safe for concurrent use
// across clauses; there is no cross-clause state.
type Extractor struct {
	tiers               llm.Tiers
	escalationThreshold float64
	amountTolerance     float64
	temperature         float64
	maxTokens           int
	logger              *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithEscalationThreshold overrides the cascade escalation threshold.
func WithEscalationThreshold(t float64) Option {
	return func(e *Extractor) { e.escalationThreshold = t }
}

// WithAmountTolerance overrides the payment-amount correction tolerance.
func WithAmountTolerance(t float64) Option {
	return func(e *Extractor) { e.amountTolerance = t }
}

// WithTemperature overrides the sampling temperature for both tiers.
func WithTemperature(t float64) Option {
	return func(e *Extractor) {
		if t > 0 {
			e.temperature = t
		}
	}
}

// WithMaxTokens overrides the per-call completion budget.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor over the given model tiers.
func NewExtractor(tiers llm.Tiers, opts ...Option) *Extractor {
	e := &Extractor{
		tiers:               tiers,
		escalationThreshold: DefaultEscalationThreshold,
		amountTolerance:     DefaultAmountTolerance,
		temperature:         0.1,
		maxTokens:           2048,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the low-cost model for the clause's relations, escalating
// once to the high-accuracy model when the low-cost result is missing,
// undecodable or below the escalation threshold. The accepted payload is
// then validated against the clause's critical data.
//
// Extract never returns an error: an undecodable final response yields an
// empty Result with confidence 0 and ValidationPassed=false, so one bad
// clause never aborts the document.
func (e *Extractor) Extract(ctx context.Context, clauseText string, data critical.Data) Result {
	req := llm.Request{
		Prompt:      buildPrompt(clauseText),
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}

	attempt := e.complete(ctx, e.tiers.LowCost, req)
	if attempt.confidence() < e.escalationThreshold && e.tiers.HighAccuracy != nil {
		e.logger.Debug("escalating clause to high-accuracy model",
			"low_cost_confidence", attempt.confidence(),
			"threshold", e.escalationThreshold)
		attempt = e.complete(ctx, e.tiers.HighAccuracy, req)
	}

	if attempt.payload == nil {
		reason := "model returned no decodable relations"
		if attempt.err != nil {
			reason = attempt.err.Error()
		}
		return Result{
			Relations:            []Relation{},
			ModelUsed:            attempt.modelName,
			ExtractionConfidence: 0.0,
			ValidationPassed:     false,
			ValidationErrors:     []string{reason},
		}
	}

	relations := e.toRelations(attempt.payload, clauseText)
	validated, diags := validateRelations(relations, data, e.amountTolerance)

	return Result{
		Relations:            validated,
		ModelUsed:            attempt.modelName,
		ExtractionConfidence: combineConfidence(attempt.confidence(), validated, len(diags.errors)),
		ValidationPassed:     len(diags.errors) == 0,
		ValidationErrors:     diags.errors,
		ValidationWarnings:   diags.warnings,
	}
}

// attempt is the outcome of one model call, decoded at the boundary.
type attempt struct {
	payload   *payload
	modelName string
	response  llm.Response
	err       error
}

// confidence is the self-reported confidence used for the escalation
// decision: the payload's own confidence when present, the provider-level
// confidence otherwise, and 0 for failed or undecodable calls.
func (a attempt) confidence() float64 {
	if a.payload == nil {
		return 0.0
	}
	if a.payload.Confidence > 0 {
		return a.payload.Confidence
	}
	return a.response.Confidence
}

func (e *Extractor) complete(ctx context.Context, client llm.Client, req llm.Request) attempt {
	if client == nil {
		return attempt{err: fmt.Errorf("no model configured")}
	}

	resp, err := client.Complete(ctx, req)
	if err != nil {
		e.logger.Warn("model call failed", "model", client.ModelName(), "error", err)
		return attempt{modelName: client.ModelName(), err: err}
	}

	p, err := decodePayload(resp.Text)
	if err != nil {
		e.logger.Warn("model response undecodable", "model", resp.ModelName, "error", err)
		return attempt{modelName: resp.ModelName, response: resp, err: err}
	}

	return attempt{payload: p, modelName: resp.ModelName, response: resp}
}

// toRelations converts the decoded payload into typed relations, dropping
// entries whose action falls outside the closed schema.
func (e *Extractor) toRelations(p *payload, clauseText string) []Relation {
	relations := make([]Relation, 0, len(p.Relations))
	for _, rp := range p.Relations {
		action := Action(strings.ToUpper(strings.TrimSpace(rp.Action)))
		if !action.Valid() {
			e.logger.Warn("dropping relation with unknown action", "action", rp.Action)
			continue
		}

		conditions := make([]Condition, 0, len(rp.Conditions))
		for _, cp := range rp.Conditions {
			conditions = append(conditions, Condition{
				Type:        ConditionType(cp.Type),
				Value:       cp.Value,
				Description: cp.Description,
			})
		}

		relations = append(relations, Relation{
			Subject:          strings.TrimSpace(rp.Subject),
			Action:           action,
			Object:           strings.TrimSpace(rp.Object),
			Conditions:       conditions,
			Confidence:       rp.Confidence,
			Reasoning:        rp.Reasoning,
			SourceClauseText: clauseText,
		})
	}
	return relations
}

// combineConfidence averages the model confidence with the mean relation
// confidence, then subtracts a capped penalty per validation error.
func combineConfidence(modelConfidence float64, relations []Relation, errorCount int) float64 {
	var meanRelation float64
	if len(relations) > 0 {
		var sum float64
		for _, r := range relations {
			sum += r.Confidence
		}
		meanRelation = sum / float64(len(relations))
	}

	overall := (modelConfidence + meanRelation) / 2
	overall -= min(0.3, 0.1*float64(errorCount))
	return max(0.0, min(1.0, overall))
}
