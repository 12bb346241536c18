package rules

import (
	"fmt"
	"strings"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// PolicyEvaluator protects prep periods and protected period types such as lunch
type PolicyEvaluator struct{}

// NewPolicyEvaluator creates a new PolicyEvaluator
func NewPolicyEvaluator() *PolicyEvaluator {
	return &PolicyEvaluator{}
}

func (e *PolicyEvaluator) Category() model.RuleCategory {
	return model.CategoryPolicy
}

func (e *PolicyEvaluator) Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string) {
	c := in.Candidate

	if rule.Conditions.ProtectPrepPeriod && load.IsPrepPeriod(c.ID, in.Period) {
		return true, fmt.Sprintf("period %s is the prep period of %s", in.Period, c.Name)
	}

	for _, protected := range rule.Conditions.ProtectedPeriodTypes {
		if strings.EqualFold(strings.TrimSpace(protected), in.PeriodConfig.Type) {
			return true, fmt.Sprintf("period %s is a protected %s period", in.Period, in.PeriodConfig.Type)
		}
	}

	return false, ""
}
