package coverage

import (
	"errors"
	"time"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/rules"
)

// ErrMalformedCandidateRecord marks a candidate whose stored record cannot be decoded.
// These candidates are skipped for the tier and never fail the run.
var ErrMalformedCandidateRecord = errors.New("malformed candidate record")

const (
	// ReasonExhausted is recorded for periods nobody in any tier could cover
	ReasonExhausted = "no available staff after exhausting all role priorities"

	// ReasonNotSchoolDay is recorded when the absence falls on a weekend or closure
	ReasonNotSchoolDay = "no coverage: not a school day"
)

// MatchType classifies how much of an absence a candidate's availability spans
type MatchType string

const (
	MatchNone    MatchType = "none"
	MatchPartial MatchType = "partial"
	MatchPerfect MatchType = "perfect"
)

// Base priority scores
const (
	PriorityPerfectComplete   = 100
	PriorityPerfectConflicted = 80
	PriorityPartial           = 60
)

// Occupancy is the day view the engine reads. schedule.Snapshot satisfies it.
type Occupancy interface {
	rules.LoadSource

	IsAbsent(staffID string) bool
	IsBusy(staffID string, period model.PeriodID) bool
	DailyLoad(staffID string) int
	DailyCoverage(staffID string) int
	WeeklyLoad(staffID string) int
	WeeklyCoverage(staffID string) int
}

// Calendar reports configured closures. A nil Calendar means only weekends are closed.
type Calendar interface {
	// ClosureReason returns the reason the school is closed on date, if it is
	ClosureReason(date time.Time) (string, bool)
}

// Config controls tier order, caps, and scoring weights
type Config struct {
	// RolePriority is the order tiers are tried in
	RolePriority []model.Role

	// RoleLimits are the load limits per role, overridden per candidate by stored limits
	RoleLimits map[model.Role]model.LoadLimit

	// SubstituteDailyCap bounds the periods an external substitute covers on one date.
	// Values above model.DefaultMaxPeriodsPerDay are lowered to it.
	SubstituteDailyCap int

	// PreferredTeacherBoost is added when the candidate prefers the absent teacher
	PreferredTeacherBoost int

	// BoostBonus is added once per satisfied boostPriority rule
	BoostBonus int

	// ScoringConcurrency bounds parallel candidate scoring within a tier
	ScoringConcurrency int
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return Config{
		RolePriority:          model.DefaultRolePriority,
		RoleLimits:            map[model.Role]model.LoadLimit{},
		SubstituteDailyCap:    model.DefaultMaxPeriodsPerDay,
		PreferredTeacherBoost: 50,
		BoostBonus:            10,
		ScoringConcurrency:    8,
	}
}

// withDefaults fills zero values from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.RolePriority) == 0 {
		c.RolePriority = d.RolePriority
	}
	if c.RoleLimits == nil {
		c.RoleLimits = d.RoleLimits
	}
	// A substitute never covers more than the default daily maximum
	if c.SubstituteDailyCap <= 0 || c.SubstituteDailyCap > d.SubstituteDailyCap {
		c.SubstituteDailyCap = d.SubstituteDailyCap
	}
	if c.PreferredTeacherBoost <= 0 {
		c.PreferredTeacherBoost = d.PreferredTeacherBoost
	}
	if c.BoostBonus <= 0 {
		c.BoostBonus = d.BoostBonus
	}
	if c.ScoringConcurrency <= 0 {
		c.ScoringConcurrency = d.ScoringConcurrency
	}
	return c
}

// PeriodResult is the disposition of one requested period.
// The not-a-school-day result leaves Period empty and lists every requested period in Periods.
type PeriodResult struct {
	Period  model.PeriodID
	Periods []model.PeriodID

	AssignedID   string
	AssignedName string
	AssignedRole model.Role
	Kind         model.AssignmentKind
	Reason       string

	// CandidatesEvaluated counts candidates scored up to and including the tier that
	// decided the period
	CandidatesEvaluated int

	RequiresApproval bool
	Warnings         []string
}

// IsAssigned returns true if somebody covers the period
func (r PeriodResult) IsAssigned() bool {
	return r.AssignedID != ""
}

// TierSummary reports what happened in one role tier
type TierSummary struct {
	Role      model.Role
	Pool      int
	Skipped   int
	Eligible  int
	Claimed   int
	Duration  time.Duration
	Attempted bool
}

// Outcome is the result of one assignment run
type Outcome struct {
	// Results holds one entry per requested period, or a single entry when not a school day
	Results []PeriodResult

	// Records are the coverage rows to persist. Empty when not a school day.
	Records []model.CoverageRecord

	Collapsed    bool
	NotSchoolDay bool
	Status       model.AbsenceStatus

	// CandidatesEvaluated is the total scored across every tier attempted
	CandidatesEvaluated int

	Tiers []TierSummary
}

// Uncovered returns the periods nobody could cover
func (o *Outcome) Uncovered() []model.PeriodID {
	var periods []model.PeriodID
	if o.NotSchoolDay {
		return periods
	}
	for _, r := range o.Results {
		if !r.IsAssigned() {
			periods = append(periods, r.Period)
		}
	}
	return periods
}
