package rules

import (
	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// LoadSource is the day view the engine reads occupancy from.
// schedule.Snapshot satisfies it.
type LoadSource interface {
	// BusyPeriods returns the periods the staff member teaches or covers on the day
	BusyPeriods(staffID string) []model.PeriodID

	// IsPrepPeriod returns true if the period is the staff member's prep period
	IsPrepPeriod(staffID string, period model.PeriodID) bool
}

// Input is one prospective (candidate, period) pairing
type Input struct {
	Candidate *model.Candidate
	Absence   *model.Absence
	Period    model.PeriodID

	// PeriodConfig describes the target period
	PeriodConfig model.PeriodConfig

	// PeriodOrder is the school day's periods in order, used for consecutive runs
	PeriodOrder []model.PeriodID

	// Pending are periods already accepted for this candidate earlier in the same run
	Pending []model.PeriodID
}

// Evaluator checks the rules of one category
type Evaluator interface {
	// Category returns the rule category this evaluator handles
	Category() model.RuleCategory

	// Evaluate returns true if the pairing violates the rule, with a description of why
	Evaluate(rule model.ConstraintRule, load LoadSource, in Input) (bool, string)
}

// Result is the outcome of evaluating one rule against one pairing.
// Flags are effective values: PreventAssignment is only set for a violated hard rule,
// RequireApproval only for a violated rule that does not block, and BoostPriority only for a
// rule that is satisfied.
type Result struct {
	RuleID            string
	RuleName          string
	Category          model.RuleCategory
	Type              model.RuleType
	IsViolated        bool
	PreventAssignment bool
	RequireApproval   bool
	BoostPriority     bool
	Message           string
}

// Decision is the combined verdict on one pairing
type Decision struct {
	// Allowed is false when a load limit or a hard rule blocks the pairing
	Allowed bool

	// RequiresApproval is true when a violated rule flags the pairing for sign-off
	RequiresApproval bool

	// Boosts counts satisfied rules that ask the scorer to prefer this candidate
	Boosts int

	// Reasons explains blocks and approval flags
	Reasons []string

	Results []Result
}

// LoadStatus is an aggregate view of a candidate's load against their limits
type LoadStatus struct {
	CandidateID      string
	Daily            int
	Weekly           int
	Consecutive      int
	CoverageThisWeek int
	Limit            model.LoadLimit
	IsExceeded       bool
	Violations       []string
}
