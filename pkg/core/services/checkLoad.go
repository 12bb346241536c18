package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/coverage"
	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/rules"
	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// ErrCandidateNotFound is returned when no active candidate has the requested ID
var ErrCandidateNotFound = errors.New("candidate not found")

// LoadCheckResult contains a candidate and their load on a date
type LoadCheckResult struct {
	Candidate *model.Candidate
	Date      time.Time
	Status    rules.LoadStatus
}

// CheckLoadLimits reports a candidate's daily, weekly and consecutive load on a date against
// their resolved load limit
func CheckLoadLimits(ctx context.Context, database db.Database, cfg *config.Config, logger *zap.Logger, candidateID string, date time.Time) (*LoadCheckResult, error) {
	logger.Debug("Checking load limits",
		zap.String("candidate_id", candidateID),
		zap.String("date", date.Format(schedule.DateLayout)))

	reader := schedule.NewReader(database, logger)
	snapshot, err := reader.ReadDay(ctx, date, "")
	if err != nil {
		return nil, err
	}

	covCfg := coverageConfig(cfg)
	candidate, err := findCandidate(ctx, database, covCfg, snapshot, candidateID, logger)
	if err != nil {
		return nil, err
	}

	engine, err := loadEngine(ctx, database, cfg.SchoolID, cfg, logger)
	if err != nil {
		return nil, err
	}

	status := engine.CheckLoadLimits(snapshot, candidate)

	logger.Debug("Load checked",
		zap.String("candidate_id", candidateID),
		zap.Int("daily", status.Daily),
		zap.Int("weekly", status.Weekly),
		zap.Int("consecutive", status.Consecutive),
		zap.Int("coverage_this_week", status.CoverageThisWeek),
		zap.Bool("exceeded", status.IsExceeded))

	return &LoadCheckResult{
		Candidate: candidate,
		Date:      date,
		Status:    status,
	}, nil
}

// findCandidate searches each role's pool for the candidate
func findCandidate(ctx context.Context, database db.CandidateStore, cfg coverage.Config, occupancy coverage.Occupancy, candidateID string, logger *zap.Logger) (*model.Candidate, error) {
	for _, role := range cfg.RolePriority {
		pool, err := coverage.BuildPool(ctx, database, role, occupancy, cfg, logger)
		if err != nil {
			return nil, err
		}
		for _, c := range pool.Candidates {
			if c.ID == candidateID {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
}
