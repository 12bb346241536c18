package rules

import (
	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// CustomEvaluator is the extension point for school-specific predicates. It never fires.
type CustomEvaluator struct{}

// NewCustomEvaluator creates a new CustomEvaluator
func NewCustomEvaluator() *CustomEvaluator {
	return &CustomEvaluator{}
}

func (e *CustomEvaluator) Category() model.RuleCategory {
	return model.CategoryCustom
}

func (e *CustomEvaluator) Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string) {
	return false, ""
}
