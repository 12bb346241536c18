package rules

import (
	"fmt"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// UnionEvaluator enforces weekly coverage caps agreed with staff unions.
//
// Violated when the candidate's coverage count for the week, including periods already
// accepted in this run, meets or exceeds the cap. The cap comes from the rule's
// maxCoveragePerWeek, falling back to the candidate's load limit. Rules with a teacherRole
// only apply to candidates of that role.
type UnionEvaluator struct{}

// NewUnionEvaluator creates a new UnionEvaluator
func NewUnionEvaluator() *UnionEvaluator {
	return &UnionEvaluator{}
}

func (e *UnionEvaluator) Category() model.RuleCategory {
	return model.CategoryUnion
}

func (e *UnionEvaluator) Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string) {
	c := in.Candidate
	if rule.Conditions.TeacherRole != "" && rule.Conditions.TeacherRole != c.Role {
		return false, ""
	}

	limit := rule.Conditions.MaxCoveragePerWeek
	if limit <= 0 {
		limit = c.Limit.MaxCoveragePerWeek
	}
	if limit <= 0 {
		return false, ""
	}

	count := c.WeeklyCoverage + len(in.Pending)
	if count >= limit {
		return true, fmt.Sprintf("%s has covered %d periods this week, cap is %d", c.Name, count, limit)
	}
	return false, ""
}
