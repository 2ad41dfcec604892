// Package relation extracts subject-action-object relations from policy
// clauses using a tiered pair of language models, then validates every
// numeric condition against the rule-based critical data extracted from
// the same clause. Model output is never trusted as-is: periods are
// auto-corrected to ground truth, amounts are corrected only within a
// configured tolerance and otherwise surfaced as validation errors for
// the caller to arbitrate.
package relation

// Action is the relation verb between a coverage subject and its object.
type Action string

// The closed set of relation actions.
const (
	ActionCovers     Action = "COVERS"
	ActionExcludes   Action = "EXCLUDES"
	ActionRequires   Action = "REQUIRES"
	ActionReduces    Action = "REDUCES"
	ActionLimits     Action = "LIMITS"
	ActionReferences Action = "REFERENCES"
)

// knownActions guards against models inventing verbs outside the schema.
var knownActions = map[Action]bool{
	ActionCovers:     true,
	ActionExcludes:   true,
	ActionRequires:   true,
	ActionReduces:    true,
	ActionLimits:     true,
	ActionReferences: true,
}

// Valid reports whether a is one of the closed set of actions.
func (a Action) Valid() bool { return knownActions[a] }

// ConditionType classifies a numeric condition attached to a relation.
type ConditionType string

// Condition types with validation rules. Other types pass through
// unvalidated.
const (
	ConditionWaitingPeriod  ConditionType = "waiting_period"
	ConditionPaymentAmount  ConditionType = "payment_amount"
	ConditionReductionRatio ConditionType = "reduction_ratio"
)

// Condition is one constraint on a relation, e.g. a 90-day waiting period
// or a payment amount.
type Condition struct {
	Type        ConditionType `json:"type"`
	Value       float64       `json:"value"`
	Description string        `json:"description,omitempty"`
}

// Relation is one extracted subject-action-object triple with its
// conditions. Validation never mutates a Relation in place; corrected
// copies are returned instead.
type Relation struct {
	Subject          string      `json:"subject"`
	Action           Action      `json:"action"`
	Object           string      `json:"object"`
	Conditions       []Condition `json:"conditions,omitempty"`
	Confidence       float64     `json:"confidence"`
	Reasoning        string      `json:"reasoning,omitempty"`
	SourceClauseText string      `json:"source_clause_text,omitempty"`
}

// Result is the outcome of extracting one clause.
type Result struct {
	// Relations is the validated (and possibly corrected) relation list.
	Relations []Relation `json:"relations"`

	// ModelUsed names the model whose output was accepted.
	ModelUsed string `json:"model_used"`

	// ExtractionConfidence combines the model's self-reported confidence
	// with per-relation confidences, penalized by validation errors.
	ExtractionConfidence float64 `json:"extraction_confidence"`

	// ValidationPassed is false when any validation error was recorded or
	// the model response could not be decoded.
	ValidationPassed bool `json:"validation_passed"`

	ValidationErrors   []string `json:"validation_errors,omitempty"`
	ValidationWarnings []string `json:"validation_warnings,omitempty"`
}
