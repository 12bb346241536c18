package coverage

import (
	"fmt"
	"strings"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/rules"
)

// Score is the result of matching one candidate against one absence
type Score struct {
	Candidate *model.Candidate
	MatchType MatchType

	// CanCover are the needed periods inside the candidate's availability
	CanCover []model.PeriodID

	// Coverable are the periods the candidate may actually take, in absence order
	Coverable []model.PeriodID

	Priority int

	// Preferred is set when the candidate prefers the absent teacher
	Preferred bool

	// Approvals holds the reasons a coverable period needs sign-off
	Approvals map[model.PeriodID][]string

	// Excluded explains a zero score
	Excluded string
}

// IsEligible returns true if the candidate can take at least one period
func (s *Score) IsEligible() bool {
	return s.Priority > 0 && len(s.Coverable) > 0
}

// ScoreCandidate matches a candidate against the absence.
// The ledger is only read. Every load and rule decision is delegated to the engine.
func ScoreCandidate(c *model.Candidate, absence *model.Absence, ledger *Ledger, occupancy Occupancy, engine *rules.Engine, cfg Config) *Score {
	cfg = cfg.withDefaults()
	score := &Score{Candidate: c, MatchType: MatchNone}

	// Availability on the absence's weekday
	available := c.Availability.On(absence.Weekday)
	for _, p := range absence.PeriodsToCover {
		if available.Contains(p) {
			score.CanCover = append(score.CanCover, p)
		}
	}

	switch {
	case len(score.CanCover) == 0:
		score.Excluded = "not available for any needed period"
		return score
	case len(score.CanCover) == len(absence.PeriodsToCover):
		score.MatchType = MatchPerfect
	default:
		score.MatchType = MatchPartial
	}

	if c.ID == absence.StaffID || occupancy.IsAbsent(c.ID) {
		score.Excluded = "absent on this date"
		return score
	}

	if reason, ok := qualifies(c, absence); !ok {
		score.Excluded = reason
		return score
	}

	boosts := 0
	var lastBlock string
	for _, p := range score.CanCover {
		if ledger.IsClaimed(p) || occupancy.IsBusy(c.ID, p) {
			continue
		}

		decision := engine.Admit(occupancy, rules.Input{
			Candidate: c,
			Absence:   absence,
			Period:    p,
			Pending:   score.Coverable,
		})
		if !decision.Allowed {
			if len(decision.Reasons) > 0 {
				lastBlock = decision.Reasons[0]
			}
			continue
		}

		score.Coverable = append(score.Coverable, p)
		boosts = max(boosts, decision.Boosts)
		if decision.RequiresApproval {
			if score.Approvals == nil {
				score.Approvals = make(map[model.PeriodID][]string)
			}
			score.Approvals[p] = decision.Reasons
		}
	}

	if len(score.Coverable) == 0 {
		score.Excluded = "no coverable periods"
		if lastBlock != "" {
			score.Excluded = lastBlock
		}
		return score
	}

	switch {
	case score.MatchType == MatchPerfect && len(score.Coverable) == len(absence.PeriodsToCover):
		score.Priority = PriorityPerfectComplete
	case score.MatchType == MatchPerfect:
		score.Priority = PriorityPerfectConflicted
	default:
		score.Priority = PriorityPartial
	}

	if c.PreferredTeacherID != "" && c.PreferredTeacherID == absence.StaffID {
		score.Preferred = true
		score.Priority += cfg.PreferredTeacherBoost
	}
	score.Priority += boosts * cfg.BoostBonus

	return score
}

// qualifies checks subject and department qualification
func qualifies(c *model.Candidate, absence *model.Absence) (string, bool) {
	switch c.Role {
	case model.RoleExternalSubstitute:
		if c.SubjectSpecialties.Len() > 0 && absence.Subject != "" && !c.SubjectSpecialties.Has(absence.Subject) {
			return fmt.Sprintf("does not teach %s", absence.Subject), false
		}
	default:
		if c.Department != "" && absence.Department != "" && !strings.EqualFold(c.Department, absence.Department) {
			return fmt.Sprintf("department %s does not match %s", c.Department, absence.Department), false
		}
	}
	return "", true
}

// reason describes why a candidate was chosen
func (s *Score) reason() string {
	parts := []string{fmt.Sprintf("%s match", s.MatchType)}
	if s.Preferred {
		parts = append(parts, "preferred")
	}
	return fmt.Sprintf("%s, priority %d", strings.Join(parts, ", "), s.Priority)
}
