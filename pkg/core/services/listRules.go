package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// RuleSet contains a school's active rules and its period layout, as the engine sees them
type RuleSet struct {
	Rules   []model.ConstraintRule
	Periods []model.PeriodConfig
}

// ListRules loads and decodes the active rules for the configured school.
// A rule that cannot be decoded fails the whole listing, as it would fail a coverage run.
func ListRules(ctx context.Context, database db.RuleStore, cfg *config.Config, logger *zap.Logger) (*RuleSet, error) {
	engine, err := loadEngine(ctx, database, cfg.SchoolID, cfg, logger)
	if err != nil {
		return nil, err
	}

	ruleSet := &RuleSet{
		Rules:   engine.Rules(),
		Periods: make([]model.PeriodConfig, 0, len(engine.PeriodOrder())),
	}
	for _, p := range engine.PeriodOrder() {
		ruleSet.Periods = append(ruleSet.Periods, engine.PeriodConfig(p))
	}

	logger.Debug("Listed rules",
		zap.String("school_id", cfg.SchoolID),
		zap.Int("rules", len(ruleSet.Rules)),
		zap.Int("periods", len(ruleSet.Periods)))

	return ruleSet, nil
}
