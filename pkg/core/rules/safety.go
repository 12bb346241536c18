package rules

import (
	"fmt"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// SafetyEvaluator limits back-to-back periods.
//
// Violated when taking the period would make the candidate's run of consecutive busy periods
// reach or pass maxConsecutivePeriods (from the rule, else the candidate's load limit).
type SafetyEvaluator struct{}

// NewSafetyEvaluator creates a new SafetyEvaluator
func NewSafetyEvaluator() *SafetyEvaluator {
	return &SafetyEvaluator{}
}

func (e *SafetyEvaluator) Category() model.RuleCategory {
	return model.CategorySafety
}

func (e *SafetyEvaluator) Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string) {
	limit := rule.Conditions.MaxConsecutivePeriods
	if limit <= 0 {
		limit = in.Candidate.Limit.MaxConsecutivePeriods
	}
	if limit <= 0 {
		return false, ""
	}

	busy := withPeriod(busyWithPending(load, in), in.Period)
	run := ConsecutiveRun(in.PeriodOrder, busy, in.Period)
	if run >= limit {
		return true, fmt.Sprintf("%s would have %d consecutive periods, maximum is %d", in.Candidate.Name, run, limit)
	}
	return false, ""
}
