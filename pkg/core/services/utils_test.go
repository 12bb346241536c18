package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/model"
)

func TestCoverageConfig(t *testing.T) {
	cfg := &config.Config{
		RolePriority: []string{"internal_teacher", "external_substitute"},
		LoadLimits: map[string]config.LoadLimit{
			"paraprofessional": {MaxPeriodsPerDay: 4, MaxCoveragePerWeek: 10},
		},
		SubstituteDailyCap:    5,
		PreferredTeacherBoost: 40,
		BoostBonus:            15,
		ScoringConcurrency:    2,
	}

	result := coverageConfig(cfg)

	assert.Equal(t, []model.Role{model.RoleInternalTeacher, model.RoleExternalSubstitute}, result.RolePriority)
	require.Contains(t, result.RoleLimits, model.RoleParaprofessional)
	assert.Equal(t, 4, result.RoleLimits[model.RoleParaprofessional].MaxPeriodsPerDay)
	assert.Equal(t, 10, result.RoleLimits[model.RoleParaprofessional].MaxCoveragePerWeek)
	assert.Equal(t, 5, result.SubstituteDailyCap)
	assert.Equal(t, 40, result.PreferredTeacherBoost)
	assert.Equal(t, 15, result.BoostBonus)
	assert.Equal(t, 2, result.ScoringConcurrency)
}

func TestRolePriority_Default(t *testing.T) {
	roles := rolePriority(&config.Config{})

	assert.Equal(t, model.DefaultRolePriority, roles)
}

func TestToAssignmentRows(t *testing.T) {
	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	records := []model.CoverageRecord{
		{
			AbsenceID:        "abs-1",
			Date:             date,
			Periods:          []model.PeriodID{"1st"},
			AssigneeID:       "para-1",
			AssigneeRole:     model.RoleParaprofessional,
			Kind:             model.KindParaprofessional,
			Reason:           "perfect match, priority 100",
			RequiresApproval: true,
		},
		{
			AbsenceID: "abs-1",
			Date:      date,
			Periods:   []model.PeriodID{"2nd"},
			Reason:    "no available staff after exhausting all role priorities",
		},
	}

	rows := toAssignmentRows(records)

	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0].ID)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	assert.Equal(t, "2025-03-12", rows[0].Date)
	assert.Equal(t, []string{"1st"}, rows[0].Periods)
	assert.Equal(t, "para-1", rows[0].AssigneeID)
	assert.Equal(t, "paraprofessional", rows[0].AssigneeRole)
	assert.Equal(t, "Paraprofessional", rows[0].Kind)
	assert.True(t, rows[0].RequiresApproval)

	assert.Empty(t, rows[1].AssigneeID)
	assert.Empty(t, rows[1].Kind)
	assert.Equal(t, records[1].Reason, rows[1].Reason)
}

func TestToAssignmentRows_Empty(t *testing.T) {
	rows := toAssignmentRows(nil)

	assert.Empty(t, rows)
}
