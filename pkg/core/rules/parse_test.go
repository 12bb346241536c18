package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/db"
)

func TestParseRule_Valid(t *testing.T) {
	rule, err := ParseRule(db.ConstraintRule{
		ID:         "r1",
		SchoolID:   "school-1",
		Name:       "Union cap",
		Category:   "Union",
		RuleType:   "hard",
		Conditions: `{"teacherRole":"internal_teacher","maxCoveragePerWeek":5}`,
		Actions:    `{"preventAssignment":true,"message":"cap reached"}`,
		Priority:   2,
		Active:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.CategoryUnion, rule.Category)
	assert.Equal(t, model.RuleHard, rule.Type)
	assert.Equal(t, model.RoleInternalTeacher, rule.Conditions.TeacherRole)
	assert.Equal(t, 5, rule.Conditions.MaxCoveragePerWeek)
	assert.True(t, rule.Actions.PreventAssignment)
	assert.Equal(t, "cap reached", rule.Actions.Message)
	assert.Equal(t, 2, rule.Priority)
}

func TestParseRule_EmptyConditions(t *testing.T) {
	rule, err := ParseRule(db.ConstraintRule{ID: "r1", Category: "custom", RuleType: "soft"})

	require.NoError(t, err)
	assert.Equal(t, model.RuleConditions{}, rule.Conditions)
	assert.Equal(t, model.RuleActions{}, rule.Actions)
}

func TestParseRule_Malformed(t *testing.T) {
	tests := []struct {
		name string
		row  db.ConstraintRule
	}{
		{"unknown category", db.ConstraintRule{ID: "r1", Category: "weather", RuleType: "hard"}},
		{"unknown type", db.ConstraintRule{ID: "r1", Category: "union", RuleType: "mandatory"}},
		{"bad conditions", db.ConstraintRule{ID: "r1", Category: "union", RuleType: "hard", Conditions: `{"maxCoveragePerWeek":`}},
		{"bad actions", db.ConstraintRule{ID: "r1", Category: "union", RuleType: "hard", Actions: `[]`}},
		{"unknown role", db.ConstraintRule{ID: "r1", Category: "union", RuleType: "hard", Conditions: `{"teacherRole":"janitor"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.row)
			assert.ErrorIs(t, err, ErrMalformedRule)
		})
	}
}

func TestParseRules_SkipsInactiveAndFailsOnMalformed(t *testing.T) {
	rules, err := ParseRules([]db.ConstraintRule{
		{ID: "r1", Category: "policy", RuleType: "hard", Active: true},
		{ID: "r2", Category: "nonsense", RuleType: "hard", Active: false},
	})
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "r1", rules[0].ID)

	_, err = ParseRules([]db.ConstraintRule{
		{ID: "r1", Category: "policy", RuleType: "hard", Active: true},
		{ID: "r2", Category: "nonsense", RuleType: "hard", Active: true},
	})
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestParsePeriodConfigs(t *testing.T) {
	defaults := ParsePeriodConfigs(nil, []string{"1st", "2nd"})
	require.Len(t, defaults, 2)
	assert.Equal(t, model.PeriodConfig{Period: "2nd", Position: 1, Type: model.PeriodTypeClass}, defaults[1])

	configured := ParsePeriodConfigs([]db.PeriodConfig{
		{Period: " lunch ", Position: 4, Type: "Lunch"},
		{Period: "1st", Position: 1},
	}, []string{"ignored"})
	require.Len(t, configured, 2)
	assert.Equal(t, model.PeriodConfig{Period: "lunch", Position: 4, Type: "lunch"}, configured[0])
	assert.Equal(t, model.PeriodTypeClass, configured[1].Type)
}
