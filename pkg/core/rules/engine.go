package rules

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// Engine evaluates load limits and configured constraint rules for prospective assignments.
// An Engine is immutable once built and safe for concurrent use.
type Engine struct {
	rules      []model.ConstraintRule
	evaluators map[model.RuleCategory]Evaluator
	periods    map[model.PeriodID]model.PeriodConfig
	order      []model.PeriodID
	logger     *zap.Logger
}

// DefaultEvaluators returns the built-in evaluator for every rule category
func DefaultEvaluators() []Evaluator {
	return []Evaluator{
		NewUnionEvaluator(),
		NewPolicyEvaluator(),
		NewSafetyEvaluator(),
		NewAcademicEvaluator(),
		NewCustomEvaluator(),
	}
}

// NewEngine creates an engine for the given rules and period definitions.
// Rules are evaluated in ascending priority; ties keep their ID order.
func NewEngine(rules []model.ConstraintRule, periods []model.PeriodConfig, logger *zap.Logger, evaluators ...Evaluator) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(evaluators) == 0 {
		evaluators = DefaultEvaluators()
	}

	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b model.ConstraintRule) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return strings.Compare(a.ID, b.ID)
	})

	byCategory := make(map[model.RuleCategory]Evaluator, len(evaluators))
	for _, ev := range evaluators {
		byCategory[ev.Category()] = ev
	}

	orderedPeriods := slices.Clone(periods)
	slices.SortStableFunc(orderedPeriods, func(a, b model.PeriodConfig) int {
		return a.Position - b.Position
	})
	periodMap := make(map[model.PeriodID]model.PeriodConfig, len(orderedPeriods))
	order := make([]model.PeriodID, 0, len(orderedPeriods))
	for _, p := range orderedPeriods {
		periodMap[p.Period] = p
		order = append(order, p.Period)
	}

	return &Engine{
		rules:      sorted,
		evaluators: byCategory,
		periods:    periodMap,
		order:      order,
		logger:     logger,
	}
}

// Rules returns the engine's rules in evaluation order
func (e *Engine) Rules() []model.ConstraintRule {
	return slices.Clone(e.rules)
}

// PeriodOrder returns the configured periods of the day in order
func (e *Engine) PeriodOrder() []model.PeriodID {
	return slices.Clone(e.order)
}

// PeriodConfig returns the configuration for a period, defaulting to a class period
func (e *Engine) PeriodConfig(period model.PeriodID) model.PeriodConfig {
	if cfg, ok := e.periods[period]; ok {
		return cfg
	}
	return model.PeriodConfig{Period: period, Position: -1, Type: model.PeriodTypeClass}
}

// Evaluate runs every rule against the pairing and returns one result per rule
func (e *Engine) Evaluate(load LoadSource, in Input) []Result {
	in = e.complete(in)

	results := make([]Result, 0, len(e.rules))
	for _, rule := range e.rules {
		results = append(results, e.evaluateRule(rule, load, in))
	}
	return results
}

func (e *Engine) evaluateRule(rule model.ConstraintRule, load LoadSource, in Input) Result {
	result := Result{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Category: rule.Category,
		Type:     rule.Type,
	}

	evaluator, ok := e.evaluators[rule.Category]
	if !ok {
		return result
	}

	violated, detail := evaluator.Evaluate(rule, load, in)
	result.IsViolated = violated
	if !violated {
		result.BoostPriority = rule.Actions.BoostPriority
		return result
	}

	result.Message = detail
	if rule.Actions.Message != "" {
		result.Message = rule.Actions.Message
	}

	// preventAssignment blocks whatever the rule type
	result.PreventAssignment = rule.Actions.PreventAssignment
	result.RequireApproval = rule.Actions.RequireApproval || rule.Type == model.RuleSoft

	return result
}

// Admit decides whether the candidate may take the period. Load limits are checked first,
// then every configured rule.
func (e *Engine) Admit(load LoadSource, in Input) Decision {
	in = e.complete(in)

	if reason, blocked := e.checkLimits(load, in); blocked {
		return Decision{Allowed: false, Reasons: []string{reason}}
	}

	decision := Decision{Allowed: true, Results: e.Evaluate(load, in)}
	for _, r := range decision.Results {
		switch {
		case r.PreventAssignment:
			decision.Allowed = false
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("%s: %s", r.RuleName, r.Message))
		case r.RequireApproval:
			decision.RequiresApproval = true
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("%s: %s", r.RuleName, r.Message))
		case r.BoostPriority:
			decision.Boosts++
		}
	}

	if !decision.Allowed {
		e.logger.Debug("Assignment blocked by rule",
			zap.String("candidate_id", in.Candidate.ID),
			zap.String("period", string(in.Period)),
			zap.Strings("reasons", decision.Reasons))
	}

	return decision
}

// checkLimits applies the candidate's load limit to the pairing, counting pending claims
func (e *Engine) checkLimits(load LoadSource, in Input) (string, bool) {
	c := in.Candidate
	limit := c.Limit
	pending := len(in.Pending)

	if limit.MaxPeriodsPerDay > 0 && c.RunningDailyLoad()+pending >= limit.MaxPeriodsPerDay {
		return fmt.Sprintf("daily limit of %d periods reached", limit.MaxPeriodsPerDay), true
	}
	if limit.MaxPeriodsPerWeek > 0 && c.WeeklyLoad+pending >= limit.MaxPeriodsPerWeek {
		return fmt.Sprintf("weekly limit of %d periods reached", limit.MaxPeriodsPerWeek), true
	}
	if limit.MaxCoveragePerWeek > 0 && c.WeeklyCoverage+pending >= limit.MaxCoveragePerWeek {
		return fmt.Sprintf("weekly coverage limit of %d reached", limit.MaxCoveragePerWeek), true
	}
	if limit.MaxConsecutivePeriods > 0 {
		run := ConsecutiveRun(in.PeriodOrder, withPeriod(busyWithPending(load, in), in.Period), in.Period)
		if run > limit.MaxConsecutivePeriods {
			return fmt.Sprintf("would teach %d consecutive periods, limit is %d", run, limit.MaxConsecutivePeriods), true
		}
	}
	return "", false
}

// CheckLoadLimits reports the candidate's current load against their limit.
// A cap is exceeded when no further period can be taken under it.
func (e *Engine) CheckLoadLimits(load LoadSource, c *model.Candidate) LoadStatus {
	busy := load.BusyPeriods(c.ID)
	status := LoadStatus{
		CandidateID:      c.ID,
		Daily:            c.RunningDailyLoad(),
		Weekly:           c.WeeklyLoad,
		Consecutive:      LongestRun(e.order, busy),
		CoverageThisWeek: c.WeeklyCoverage,
		Limit:            c.Limit,
	}

	limit := c.Limit
	if limit.MaxPeriodsPerDay > 0 && status.Daily >= limit.MaxPeriodsPerDay {
		status.Violations = append(status.Violations,
			fmt.Sprintf("daily load %d has reached the limit of %d", status.Daily, limit.MaxPeriodsPerDay))
	}
	if limit.MaxPeriodsPerWeek > 0 && status.Weekly >= limit.MaxPeriodsPerWeek {
		status.Violations = append(status.Violations,
			fmt.Sprintf("weekly load %d has reached the limit of %d", status.Weekly, limit.MaxPeriodsPerWeek))
	}
	if limit.MaxConsecutivePeriods > 0 && status.Consecutive > limit.MaxConsecutivePeriods {
		status.Violations = append(status.Violations,
			fmt.Sprintf("%d consecutive periods exceeds the limit of %d", status.Consecutive, limit.MaxConsecutivePeriods))
	}
	if limit.MaxCoveragePerWeek > 0 && status.CoverageThisWeek >= limit.MaxCoveragePerWeek {
		status.Violations = append(status.Violations,
			fmt.Sprintf("weekly coverage %d has reached the limit of %d", status.CoverageThisWeek, limit.MaxCoveragePerWeek))
	}
	status.IsExceeded = len(status.Violations) > 0

	return status
}

// complete fills the period details the evaluators read
func (e *Engine) complete(in Input) Input {
	if in.PeriodConfig.Period == "" {
		in.PeriodConfig = e.PeriodConfig(in.Period)
	}
	if in.PeriodOrder == nil {
		in.PeriodOrder = e.order
	}
	return in
}

func busyWithPending(load LoadSource, in Input) []model.PeriodID {
	busy := load.BusyPeriods(in.Candidate.ID)
	for _, p := range in.Pending {
		if !slices.Contains(busy, p) {
			busy = append(busy, p)
		}
	}
	return busy
}

func withPeriod(periods []model.PeriodID, period model.PeriodID) []model.PeriodID {
	if slices.Contains(periods, period) {
		return periods
	}
	return append(slices.Clone(periods), period)
}
