package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/coverage"
	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/rules"
	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/db"
	"github.com/jakechorley/staff-cover/pkg/metrics"
)

// ErrAbsenceNotFound is returned when the requested absence does not exist
var ErrAbsenceNotFound = errors.New("absence not found")

var validate = validator.New()

// Notifier is told about every run that persisted coverage
type Notifier interface {
	NotifyCoverage(ctx context.Context, absence *model.Absence, results []coverage.PeriodResult) error
}

// AssignCoverageResult contains the outcome of one coverage run
type AssignCoverageResult struct {
	Absence *model.Absence

	// Results holds one entry per requested period, or one entry spanning every period when
	// the absence is not on a school day
	Results []coverage.PeriodResult

	Collapsed           bool
	NotSchoolDay        bool
	Status              model.AbsenceStatus
	CandidatesEvaluated int
	Uncovered           []model.PeriodID
	Tiers               []coverage.TierSummary
}

// CoverageService runs coverage assignment. Runs for the same date are serialized through
// the store's date lock so that each run sees the assignments committed by the previous one,
// even when the runs come from different processes.
type CoverageService struct {
	database db.Database
	cfg      *config.Config
	logger   *zap.Logger
	calendar *ClosureCalendar
	notifier Notifier
	metrics  *metrics.Collector
}

// NewCoverageService creates a CoverageService. notifier and collector may be nil.
func NewCoverageService(database db.Database, cfg *config.Config, logger *zap.Logger, notifier Notifier, collector *metrics.Collector) (*CoverageService, error) {
	calendar, err := NewClosureCalendar(cfg.Closures, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load closures: %w", err)
	}

	return &CoverageService{
		database: database,
		cfg:      cfg,
		logger:   logger,
		calendar: calendar,
		notifier: notifier,
		metrics:  collector,
	}, nil
}

// AssignCoverage assigns cover for every period of an absence and persists the result.
// Prior coverage rows for the absence are replaced, so re-running with unchanged inputs
// produces the same assignments.
func (s *CoverageService) AssignCoverage(ctx context.Context, absenceID string) (*AssignCoverageResult, error) {
	start := time.Now()

	result, outcome, err := s.assignCoverage(ctx, absenceID)
	if s.metrics != nil {
		if err != nil {
			s.metrics.RecordError(time.Since(start))
		} else {
			s.metrics.RecordRun(outcome, time.Since(start))
		}
	}
	return result, err
}

func (s *CoverageService) assignCoverage(ctx context.Context, absenceID string) (*AssignCoverageResult, *coverage.Outcome, error) {
	logger := s.logger.With(zap.String("absence_id", absenceID))
	logger.Debug("Starting assignCoverage")

	// Step 1: DB query - Fetch absence
	row, err := s.database.GetAbsence(ctx, absenceID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to fetch absence: %w", schedule.ErrDataUnavailable, err)
	}
	if row == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAbsenceNotFound, absenceID)
	}
	if err := validate.Struct(row); err != nil {
		return nil, nil, fmt.Errorf("invalid absence %s: %w", absenceID, err)
	}

	absence, err := schedule.ParseAbsence(*row)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid absence %s: %w", absenceID, err)
	}
	if absence.SchoolID == "" {
		absence.SchoolID = s.cfg.SchoolID
	}

	logger.Debug("Absence loaded",
		zap.String("staff_id", absence.StaffID),
		zap.String("date", absence.Date.Format(schedule.DateLayout)),
		zap.Int("periods", len(absence.PeriodsToCover)))

	date := absence.Date.Format(schedule.DateLayout)
	req := coverage.Request{
		Absence:  absence,
		Store:    s.database,
		Calendar: s.calendar,
		Config:   coverageConfig(s.cfg),
	}

	if _, closed := coverage.NonSchoolDay(absence, s.calendar); !closed {
		// Step 2: Serialize runs for the date until the result is persisted
		unlock, err := s.database.LockDate(ctx, date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to lock date %s: %w", schedule.ErrDataUnavailable, date, err)
		}
		defer unlock()
		logger.Debug("Acquired date lock", zap.String("date", date))

		// Step 3: Load rules and the day snapshot
		req.Engine, err = loadEngine(ctx, s.database, absence.SchoolID, s.cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		reader := schedule.NewReader(s.database, logger)
		req.Occupancy, err = reader.ReadDay(ctx, absence.Date, absence.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	// Step 4: Run the assignment
	outcome, err := coverage.Assign(ctx, req, logger)
	if err != nil {
		return nil, nil, err
	}

	result := &AssignCoverageResult{
		Absence:             absence,
		Results:             outcome.Results,
		Collapsed:           outcome.Collapsed,
		NotSchoolDay:        outcome.NotSchoolDay,
		Status:              outcome.Status,
		CandidatesEvaluated: outcome.CandidatesEvaluated,
		Uncovered:           outcome.Uncovered(),
		Tiers:               outcome.Tiers,
	}

	if outcome.NotSchoolDay {
		logger.Info("No coverage needed, not a school day", zap.String("date", date))
		return result, outcome, nil
	}

	// Step 5: DB write - Replace coverage rows and update the absence
	rows := toAssignmentRows(outcome.Records)
	logger.Debug("Persisting coverage assignments", zap.Int("rows", len(rows)))
	if err := s.database.ReplaceCoverageAssignments(ctx, absence.ID, rows); err != nil {
		return nil, nil, fmt.Errorf("failed to persist coverage assignments: %w", err)
	}
	if err := s.database.UpdateAbsenceStatus(ctx, absence.ID, string(outcome.Status)); err != nil {
		return nil, nil, fmt.Errorf("failed to update absence status: %w", err)
	}
	absence.Status = outcome.Status

	logger.Info("Coverage assigned",
		zap.String("status", string(outcome.Status)),
		zap.Bool("collapsed", outcome.Collapsed),
		zap.Int("uncovered", len(result.Uncovered)),
		zap.Int("candidates_evaluated", outcome.CandidatesEvaluated))

	// Step 6: Notify. Delivery failures do not undo the run.
	if s.notifier != nil {
		if err := s.notifier.NotifyCoverage(ctx, absence, outcome.Results); err != nil {
			logger.Warn("Failed to send coverage notification", zap.Error(err))
		}
	}

	return result, outcome, nil
}

// loadEngine builds the rules engine for a school from its stored rules and periods
func loadEngine(ctx context.Context, database db.RuleStore, schoolID string, cfg *config.Config, logger *zap.Logger) (*rules.Engine, error) {
	logger.Debug("Fetching active rules", zap.String("school_id", schoolID))
	ruleRows, err := database.GetActiveRules(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch rules: %w", schedule.ErrDataUnavailable, err)
	}

	parsed, err := rules.ParseRules(ruleRows)
	if err != nil {
		return nil, err
	}

	periodRows, err := database.GetPeriodConfigs(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch period configuration: %w", schedule.ErrDataUnavailable, err)
	}
	periods := rules.ParsePeriodConfigs(periodRows, cfg.DefaultPeriods)

	logger.Debug("Rules loaded",
		zap.Int("rules", len(parsed)),
		zap.Int("periods", len(periods)))

	return rules.NewEngine(parsed, periods, logger), nil
}
