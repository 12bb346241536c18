package rules

import (
	"fmt"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// AcademicEvaluator checks subject match. Paired with boostPriority it acts as a preference
// for specialists rather than a filter.
type AcademicEvaluator struct{}

// NewAcademicEvaluator creates a new AcademicEvaluator
func NewAcademicEvaluator() *AcademicEvaluator {
	return &AcademicEvaluator{}
}

func (e *AcademicEvaluator) Category() model.RuleCategory {
	return model.CategoryAcademic
}

func (e *AcademicEvaluator) Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string) {
	if !rule.Conditions.RequireSubjectMatch || in.Absence == nil || in.Absence.Subject == "" {
		return false, ""
	}
	if in.Candidate.SubjectSpecialties.Has(in.Absence.Subject) {
		return false, ""
	}
	return true, fmt.Sprintf("%s does not teach %s", in.Candidate.Name, in.Absence.Subject)
}
