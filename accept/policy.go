// Package accept decides whether a clause's extraction result is good
// enough to enter the graph. The decision is a CEL expression evaluated
// against the result's quality signals, so deployments can tighten or
// loosen acceptance without code changes.
package accept

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/covergraph/sdk/relation"
)

// DefaultExpression is the acceptance policy used when none is
// configured: validated results with non-trivial confidence pass.
const DefaultExpression = `validation_passed && confidence >= 0.5`

// Policy is a compiled acceptance expression. Compile once, evaluate
// per clause; evaluation is safe for concurrent use.
type Policy struct {
	expression string
	program    cel.Program
}

// NewPolicy compiles the CEL expression. The expression sees these
// variables:
//
//	confidence        double  combined extraction confidence
//	validation_passed bool    whether numeric validation succeeded
//	error_count       int     validation errors recorded
//	warning_count     int     validation warnings recorded
//	relation_count    int     relations extracted from the clause
//	model             string  model whose output was accepted
//
// The expression must evaluate to a boolean.
func NewPolicy(expression string) (*Policy, error) {
	if expression == "" {
		expression = DefaultExpression
	}

	env, err := cel.NewEnv(
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("validation_passed", cel.BoolType),
		cel.Variable("error_count", cel.IntType),
		cel.Variable("warning_count", cel.IntType),
		cel.Variable("relation_count", cel.IntType),
		cel.Variable("model", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid accept policy %q: %w", expression, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("accept policy %q must evaluate to bool, got %s", expression, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy program: %w", err)
	}

	return &Policy{expression: expression, program: program}, nil
}

// Expression returns the source expression the policy was compiled from.
func (p *Policy) Expression() string { return p.expression }

// Evaluate applies the policy to one extraction result.
func (p *Policy) Evaluate(result relation.Result) (bool, error) {
	out, _, err := p.program.Eval(map[string]any{
		"confidence":        result.ExtractionConfidence,
		"validation_passed": result.ValidationPassed,
		"error_count":       len(result.ValidationErrors),
		"warning_count":     len(result.ValidationWarnings),
		"relation_count":    len(result.Relations),
		"model":             result.ModelUsed,
	})
	if err != nil {
		return false, fmt.Errorf("accept policy evaluation failed: %w", err)
	}
	accepted, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("accept policy returned %T, expected bool", out.Value())
	}
	return accepted, nil
}
