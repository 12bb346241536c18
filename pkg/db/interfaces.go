package db

import "context"

// ScheduleStore defines the read-only queries used to snapshot one school day
type ScheduleStore interface {
	GetAbsencesForDate(ctx context.Context, date string) ([]Absence, error)
	GetCoverageAssignmentsForDate(ctx context.Context, date string) ([]CoverageAssignment, error)
	GetScheduleForDay(ctx context.Context, dayOfWeek string) ([]ScheduleEntry, error)
}

// CandidateStore defines the queries used to build candidate pools
type CandidateStore interface {
	GetCandidates(ctx context.Context, role string) ([]CandidateStaff, error)
	GetLoadLimit(ctx context.Context, staffID string) (*LoadLimit, error)
}

// RuleStore defines the queries used to load constraint rules and period definitions
type RuleStore interface {
	GetActiveRules(ctx context.Context, schoolID string) ([]ConstraintRule, error)
	GetPeriodConfigs(ctx context.Context, schoolID string) ([]PeriodConfig, error)
}

// Database defines the interface for all database operations.
// Both the Postgres-backed postgres.DB and the YAML-backed filestore.Store implement this interface.
type Database interface {
	ScheduleStore
	CandidateStore
	RuleStore

	GetAbsence(ctx context.Context, absenceID string) (*Absence, error)
	UpdateAbsenceStatus(ctx context.Context, absenceID string, status string) error

	// ReplaceCoverageAssignments deletes every coverage row for the absence and inserts the given rows
	ReplaceCoverageAssignments(ctx context.Context, absenceID string, rows []CoverageAssignment) error

	// LockDate blocks until no other run holds the date and returns the release function.
	// The lock covers every process that can write to the same data.
	LockDate(ctx context.Context, date string) (func(), error)
}
