// Package filestore implements db.Database over a YAML dataset held in memory.
//
// Writes change the in-memory copy only; Save writes the dataset back to its file.
package filestore

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/staff-cover/pkg/db"
)

var _ db.Database = (*Store)(nil)

// Dataset is the on-disk layout of a data file
type Dataset struct {
	Absences            []db.Absence            `yaml:"absences"`
	Candidates          []db.CandidateStaff     `yaml:"candidates"`
	Schedule            []db.ScheduleEntry      `yaml:"schedule"`
	LoadLimits          []db.LoadLimit          `yaml:"loadLimits,omitempty"`
	Rules               []db.ConstraintRule     `yaml:"rules,omitempty"`
	Periods             []db.PeriodConfig       `yaml:"periods,omitempty"`
	CoverageAssignments []db.CoverageAssignment `yaml:"coverageAssignments,omitempty"`
}

// Store serves a Dataset through the db.Database interface
type Store struct {
	mu     sync.RWMutex
	path   string
	data   Dataset
	logger *zap.Logger
	locks  *db.DateLocks
}

// Open reads a dataset from a YAML file
func Open(path string, logger *zap.Logger) (*Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var data Dataset
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	store := New(data, logger)
	store.path = path

	store.logger.Debug("Loaded data file",
		zap.String("path", path),
		zap.Int("absences", len(data.Absences)),
		zap.Int("candidates", len(data.Candidates)),
		zap.Int("schedule_entries", len(data.Schedule)),
		zap.Int("rules", len(data.Rules)))

	return store, nil
}

// New creates a store over an in-memory dataset with no backing file
func New(data Dataset, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{data: data, logger: logger, locks: db.NewDateLocks()}
}

// LockDate serializes runs for a date. The dataset lives in this process, so an
// in-process lock covers every run that can see it.
func (s *Store) LockDate(ctx context.Context, date string) (func(), error) {
	return s.locks.Lock(date), nil
}

// Save writes the dataset back to the file it was opened from
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("store has no backing file")
	}

	s.mu.RLock()
	content, err := yaml.Marshal(&s.data)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	if err := os.WriteFile(s.path, content, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// Dataset returns a copy of the current dataset
func (s *Store) Dataset() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Dataset{
		Absences:            slices.Clone(s.data.Absences),
		Candidates:          slices.Clone(s.data.Candidates),
		Schedule:            slices.Clone(s.data.Schedule),
		LoadLimits:          slices.Clone(s.data.LoadLimits),
		Rules:               slices.Clone(s.data.Rules),
		Periods:             slices.Clone(s.data.Periods),
		CoverageAssignments: slices.Clone(s.data.CoverageAssignments),
	}
}

func (s *Store) GetAbsence(ctx context.Context, absenceID string) (*db.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.data.Absences {
		if a.ID == absenceID {
			a.PeriodsToCover = slices.Clone(a.PeriodsToCover)
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAbsencesForDate(ctx context.Context, date string) ([]db.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.Absence
	for _, a := range s.data.Absences {
		if a.Date == date {
			a.PeriodsToCover = slices.Clone(a.PeriodsToCover)
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *Store) UpdateAbsenceStatus(ctx context.Context, absenceID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Absences {
		if s.data.Absences[i].ID == absenceID {
			s.data.Absences[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("absence %s not found", absenceID)
}

func (s *Store) GetCoverageAssignmentsForDate(ctx context.Context, date string) ([]db.CoverageAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.CoverageAssignment
	for _, a := range s.data.CoverageAssignments {
		if a.Date == date {
			a.Periods = slices.Clone(a.Periods)
			result = append(result, a)
		}
	}
	return result, nil
}

// ReplaceCoverageAssignments swaps the absence's rows under one write lock
func (s *Store) ReplaceCoverageAssignments(ctx context.Context, absenceID string, rows []db.CoverageAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]db.CoverageAssignment, 0, len(s.data.CoverageAssignments)+len(rows))
	for _, a := range s.data.CoverageAssignments {
		if a.AbsenceID != absenceID {
			kept = append(kept, a)
		}
	}
	for _, r := range rows {
		r.AbsenceID = absenceID
		r.Periods = slices.Clone(r.Periods)
		kept = append(kept, r)
	}
	s.data.CoverageAssignments = kept

	return nil
}

func (s *Store) GetScheduleForDay(ctx context.Context, dayOfWeek string) ([]db.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.ScheduleEntry
	for _, e := range s.data.Schedule {
		if strings.EqualFold(strings.TrimSpace(e.DayOfWeek), dayOfWeek) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *Store) GetCandidates(ctx context.Context, role string) ([]db.CandidateStaff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.CandidateStaff
	for _, c := range s.data.Candidates {
		if c.Role == role {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Store) GetLoadLimit(ctx context.Context, staffID string) (*db.LoadLimit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.data.LoadLimits {
		if l.StaffID == staffID {
			return &l, nil
		}
	}
	return nil, nil
}

// GetActiveRules returns the school's active rules ordered by priority
func (s *Store) GetActiveRules(ctx context.Context, schoolID string) ([]db.ConstraintRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.ConstraintRule
	for _, r := range s.data.Rules {
		if r.Active && (r.SchoolID == "" || r.SchoolID == schoolID) {
			result = append(result, r)
		}
	}
	slices.SortStableFunc(result, func(a, b db.ConstraintRule) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return result, nil
}

// GetPeriodConfigs returns the school's periods ordered by position
func (s *Store) GetPeriodConfigs(ctx context.Context, schoolID string) ([]db.PeriodConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.PeriodConfig
	for _, p := range s.data.Periods {
		if p.SchoolID == "" || p.SchoolID == schoolID {
			result = append(result, p)
		}
	}
	slices.SortStableFunc(result, func(a, b db.PeriodConfig) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return result, nil
}
