package services

import (
	"github.com/google/uuid"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/coverage"
	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// coverageConfig converts the application config into the engine's config
func coverageConfig(cfg *config.Config) coverage.Config {
	result := coverage.Config{
		RolePriority:          rolePriority(cfg),
		RoleLimits:            make(map[model.Role]model.LoadLimit, len(cfg.LoadLimits)),
		SubstituteDailyCap:    cfg.SubstituteDailyCap,
		PreferredTeacherBoost: cfg.PreferredTeacherBoost,
		BoostBonus:            cfg.BoostBonus,
		ScoringConcurrency:    cfg.ScoringConcurrency,
	}

	for role, limit := range cfg.LoadLimits {
		result.RoleLimits[model.Role(role)] = model.LoadLimit{
			MaxPeriodsPerDay:      limit.MaxPeriodsPerDay,
			MaxPeriodsPerWeek:     limit.MaxPeriodsPerWeek,
			MaxConsecutivePeriods: limit.MaxConsecutivePeriods,
			MaxCoveragePerWeek:    limit.MaxCoveragePerWeek,
		}
	}

	return result
}

// rolePriority returns the configured tier order, or the default order
func rolePriority(cfg *config.Config) []model.Role {
	if len(cfg.RolePriority) == 0 {
		return model.DefaultRolePriority
	}
	roles := make([]model.Role, len(cfg.RolePriority))
	for i, r := range cfg.RolePriority {
		roles[i] = model.Role(r)
	}
	return roles
}

// toAssignmentRows converts coverage records into database rows with fresh IDs
func toAssignmentRows(records []model.CoverageRecord) []db.CoverageAssignment {
	rows := make([]db.CoverageAssignment, len(records))
	for i, r := range records {
		periods := make([]string, len(r.Periods))
		for j, p := range r.Periods {
			periods[j] = string(p)
		}

		rows[i] = db.CoverageAssignment{
			ID:               uuid.New().String(),
			AbsenceID:        r.AbsenceID,
			Date:             r.Date.Format(schedule.DateLayout),
			Periods:          periods,
			AssigneeID:       r.AssigneeID,
			AssigneeRole:     string(r.AssigneeRole),
			Kind:             string(r.Kind),
			Reason:           r.Reason,
			RequiresApproval: r.RequiresApproval,
		}
	}
	return rows
}
