package model

import (
	"slices"
	"time"
)

// Role is the tier a candidate belongs to
type Role string

const (
	RoleExternalSubstitute Role = "external_substitute"
	RoleParaprofessional   Role = "paraprofessional"
	RoleInternalTeacher    Role = "internal_teacher"
)

// DefaultRolePriority is the tier order used when no order is configured
var DefaultRolePriority = []Role{
	RoleExternalSubstitute,
	RoleParaprofessional,
	RoleInternalTeacher,
}

func (r Role) IsValid() bool {
	return r == RoleExternalSubstitute || r == RoleParaprofessional || r == RoleInternalTeacher
}

// Kind returns the assignment kind recorded when a candidate of this role covers a period
func (r Role) Kind() AssignmentKind {
	switch r {
	case RoleExternalSubstitute:
		return KindSubstitute
	case RoleParaprofessional:
		return KindParaprofessional
	default:
		return KindTeacher
	}
}

// AssignmentKind is the type stored on a coverage record
type AssignmentKind string

const (
	KindSubstitute       AssignmentKind = "Substitute"
	KindParaprofessional AssignmentKind = "Paraprofessional"
	KindTeacher          AssignmentKind = "Teacher"
)

// AbsenceStatus tracks how far an absence has been covered
type AbsenceStatus string

const (
	AbsencePending           AbsenceStatus = "pending"
	AbsenceAssigned          AbsenceStatus = "assigned"
	AbsencePartiallyAssigned AbsenceStatus = "partially_assigned"
)

// PeriodID identifies a period in the school day, e.g. "1st" or "P3"
type PeriodID string

// Absence is one staff member absent on one date
type Absence struct {
	ID             string
	SchoolID       string
	StaffID        string
	StaffName      string
	Date           time.Time
	Weekday        time.Weekday
	PeriodsToCover []PeriodID
	Subject        string
	Department     string
	Status         AbsenceStatus
}

// NeedsPeriod returns true if the period is one the absence needs covered
func (a *Absence) NeedsPeriod(period PeriodID) bool {
	return slices.Contains(a.PeriodsToCover, period)
}

// Candidate is a staff member who may cover periods, decoded from the store once per run
type Candidate struct {
	ID                 string
	Name               string
	Role               Role
	Availability       Availability
	SubjectSpecialties StringSet
	Department         string
	PreferredTeacherID string

	// Derived from the day's snapshot
	CurrentLoad    int
	DailyCoverage  int
	WeeklyLoad     int
	WeeklyCoverage int

	Limit LoadLimit
}

// RunningDailyLoad is the load compared against the per-day cap.
// Substitutes are capped on coverage alone since they carry no teaching timetable.
func (c *Candidate) RunningDailyLoad() int {
	if c.Role == RoleExternalSubstitute {
		return c.DailyCoverage
	}
	return c.CurrentLoad
}

// LoadLimit holds the caps for one candidate. Zero values mean no cap.
type LoadLimit struct {
	MaxPeriodsPerDay      int
	MaxPeriodsPerWeek     int
	MaxConsecutivePeriods int
	MaxCoveragePerWeek    int
}

// DefaultMaxPeriodsPerDay applies when no limit is configured for a candidate or role
const DefaultMaxPeriodsPerDay = 6

// DefaultLoadLimit returns the limit used when nothing is configured
func DefaultLoadLimit() LoadLimit {
	return LoadLimit{MaxPeriodsPerDay: DefaultMaxPeriodsPerDay}
}

// ScheduleKind distinguishes timetable entries
type ScheduleKind string

const (
	ScheduleClass ScheduleKind = "class"
	ScheduleDuty  ScheduleKind = "duty"
	SchedulePrep  ScheduleKind = "prep"
)

// CountsAsLoad returns true if the entry occupies the staff member
func (k ScheduleKind) CountsAsLoad() bool {
	return k == ScheduleClass || k == ScheduleDuty
}

// ScheduleEntry is one timetable slot for a staff member
type ScheduleEntry struct {
	StaffID string
	Weekday time.Weekday
	Period  PeriodID
	Kind    ScheduleKind
	Subject string
}

// PeriodConfig describes a period of the school day
type PeriodConfig struct {
	Period   PeriodID
	Position int
	Type     string
}

// PeriodTypeClass is the type given to periods with no explicit configuration
const PeriodTypeClass = "class"

// CoverageRecord is one persisted coverage row: either one period, or every period of the
// absence when a single substitute covers the whole absence
type CoverageRecord struct {
	ID               string
	AbsenceID        string
	Date             time.Time
	Periods          []PeriodID
	AssigneeID       string // empty when nobody could cover
	AssigneeName     string
	AssigneeRole     Role
	Kind             AssignmentKind
	Reason           string
	RequiresApproval bool
}

// IsAssigned returns true if the record has an assignee
func (r *CoverageRecord) IsAssigned() bool {
	return r.AssigneeID != ""
}
