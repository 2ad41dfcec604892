package relation

import (
	"fmt"
	"math"

	"github.com/covergraph/sdk/critical"
)

// diagnostics collects validation findings for one clause. Warnings mark
// auto-corrected values; errors mark disagreements beyond tolerance that
// the caller must arbitrate.
type diagnostics struct {
	errors   []string
	warnings []string
}

func (d *diagnostics) errorf(format string, args ...any) {
	d.errors = append(d.errors, fmt.Sprintf(format, args...))
}

func (d *diagnostics) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// validateRelations checks every numeric condition against the rule-based
// critical data and returns a corrected copy of the relations plus the
// diagnostics. Inputs are never mutated.
//
// Waiting periods are always auto-corrected: the closed-form period
// grammar has no ambiguity, so a disagreement means the model misread the
// clause. Payment amounts are corrected only when the closest extracted
// amount is within tolerance (relative to the extracted amount);
// otherwise the model's value is kept and an error is recorded so the
// caller can reject or re-prompt.
func validateRelations(relations []Relation, data critical.Data, tolerance float64) ([]Relation, diagnostics) {
	var diags diagnostics

	validated := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		copied := rel
		copied.Conditions = make([]Condition, len(rel.Conditions))
		for i, cond := range rel.Conditions {
			copied.Conditions[i] = validateCondition(cond, data, tolerance, &diags)
		}
		validated = append(validated, copied)
	}

	return validated, diags
}

// validateCondition returns the condition, value corrected where the
// rules allow. The condition type is never overridden.
func validateCondition(cond Condition, data critical.Data, tolerance float64, diags *diagnostics) Condition {
	switch cond.Type {
	case ConditionWaitingPeriod:
		return validateWaitingPeriod(cond, data.PeriodDays(), diags)
	case ConditionPaymentAmount:
		return validatePaymentAmount(cond, data.AmountValues(), tolerance, diags)
	default:
		return cond
	}
}

func validateWaitingPeriod(cond Condition, periods []int, diags *diagnostics) Condition {
	if len(periods) == 0 {
		return cond
	}
	for _, days := range periods {
		if cond.Value == float64(days) {
			return cond
		}
	}

	corrected := cond
	corrected.Value = float64(periods[0])
	diags.warnf("waiting_period %v not in extracted periods %v, corrected to %d",
		cond.Value, periods, periods[0])
	return corrected
}

func validatePaymentAmount(cond Condition, amounts []int64, tolerance float64, diags *diagnostics) Condition {
	if len(amounts) == 0 {
		return cond
	}
	closest := amounts[0]
	for _, amount := range amounts {
		if amount == int64(cond.Value) {
			return cond
		}
		if math.Abs(float64(amount)-cond.Value) < math.Abs(float64(closest)-cond.Value) {
			closest = amount
		}
	}

	relDiff := math.Abs(cond.Value-float64(closest)) / float64(closest)
	if relDiff <= tolerance {
		corrected := cond
		corrected.Value = float64(closest)
		diags.warnf("payment_amount %.0f within %.0f%% of extracted %d, corrected",
			cond.Value, tolerance*100, closest)
		return corrected
	}

	diags.errorf("payment_amount %.0f disagrees with extracted amounts %v beyond %.0f%% tolerance",
		cond.Value, amounts, tolerance*100)
	return cond
}
