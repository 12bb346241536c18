package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// ErrMalformedRule is returned when a stored rule cannot be decoded.
// A rule that cannot be read is never skipped, since skipping a hard rule would let blocked
// assignments through.
var ErrMalformedRule = errors.New("malformed constraint rule")

// ParseRule converts a stored rule into the domain type
func ParseRule(row db.ConstraintRule) (model.ConstraintRule, error) {
	category := model.RuleCategory(strings.ToLower(strings.TrimSpace(row.Category)))
	if !category.IsValid() {
		return model.ConstraintRule{}, fmt.Errorf("%w: rule %s has unknown category %q", ErrMalformedRule, row.ID, row.Category)
	}

	ruleType := model.RuleType(strings.ToLower(strings.TrimSpace(row.RuleType)))
	if !ruleType.IsValid() {
		return model.ConstraintRule{}, fmt.Errorf("%w: rule %s has unknown type %q", ErrMalformedRule, row.ID, row.RuleType)
	}

	var conditions model.RuleConditions
	if strings.TrimSpace(row.Conditions) != "" {
		if err := json.Unmarshal([]byte(row.Conditions), &conditions); err != nil {
			return model.ConstraintRule{}, fmt.Errorf("%w: rule %s conditions: %w", ErrMalformedRule, row.ID, err)
		}
	}
	if conditions.TeacherRole != "" && !conditions.TeacherRole.IsValid() {
		return model.ConstraintRule{}, fmt.Errorf("%w: rule %s has unknown teacherRole %q", ErrMalformedRule, row.ID, conditions.TeacherRole)
	}

	var actions model.RuleActions
	if strings.TrimSpace(row.Actions) != "" {
		if err := json.Unmarshal([]byte(row.Actions), &actions); err != nil {
			return model.ConstraintRule{}, fmt.Errorf("%w: rule %s actions: %w", ErrMalformedRule, row.ID, err)
		}
	}

	return model.ConstraintRule{
		ID:         row.ID,
		SchoolID:   row.SchoolID,
		Name:       row.Name,
		Category:   category,
		Type:       ruleType,
		Conditions: conditions,
		Actions:    actions,
		Priority:   row.Priority,
	}, nil
}

// ParseRules converts all active stored rules, failing on the first malformed one
func ParseRules(rows []db.ConstraintRule) ([]model.ConstraintRule, error) {
	result := make([]model.ConstraintRule, 0, len(rows))
	for _, row := range rows {
		if !row.Active {
			continue
		}
		rule, err := ParseRule(row)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, nil
}

// ParsePeriodConfigs converts stored period definitions. When the school has none, the
// default period names are used in order, all typed as class periods.
func ParsePeriodConfigs(rows []db.PeriodConfig, defaults []string) []model.PeriodConfig {
	if len(rows) == 0 {
		result := make([]model.PeriodConfig, len(defaults))
		for i, p := range defaults {
			result[i] = model.PeriodConfig{Period: model.PeriodID(p), Position: i, Type: model.PeriodTypeClass}
		}
		return result
	}

	result := make([]model.PeriodConfig, len(rows))
	for i, row := range rows {
		periodType := strings.ToLower(strings.TrimSpace(row.Type))
		if periodType == "" {
			periodType = model.PeriodTypeClass
		}
		result[i] = model.PeriodConfig{
			Period:   model.PeriodID(strings.TrimSpace(row.Period)),
			Position: row.Position,
			Type:     periodType,
		}
	}
	return result
}
