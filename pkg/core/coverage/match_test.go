package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/db"
)

func candidate(id string, role model.Role, periods ...model.PeriodID) *model.Candidate {
	return &model.Candidate{
		ID:           id,
		Name:         id,
		Role:         role,
		Availability: model.Availability{wednesday.Weekday(): periods},
		Limit:        model.DefaultLoadLimit(),
	}
}

func TestScoreCandidate_PriorityTiers(t *testing.T) {
	absence := newAbsence(wednesday, "1st", "2nd")
	engine := newEngine()
	ledger := NewLedger(absence.PeriodsToCover)

	complete := ScoreCandidate(candidate("a", model.RoleInternalTeacher, "1st", "2nd"), absence, ledger, newOccupancy(), engine, DefaultConfig())
	assert.Equal(t, MatchPerfect, complete.MatchType)
	assert.Equal(t, PriorityPerfectComplete, complete.Priority)

	occupancy := newOccupancy()
	occupancy.busy["b"] = []model.PeriodID{"2nd"}
	conflicted := ScoreCandidate(candidate("b", model.RoleInternalTeacher, "1st", "2nd"), absence, ledger, occupancy, engine, DefaultConfig())
	assert.Equal(t, MatchPerfect, conflicted.MatchType)
	assert.Equal(t, PriorityPerfectConflicted, conflicted.Priority)
	assert.Equal(t, []model.PeriodID{"1st"}, conflicted.Coverable)

	partial := ScoreCandidate(candidate("c", model.RoleInternalTeacher, "2nd", "5th"), absence, ledger, newOccupancy(), engine, DefaultConfig())
	assert.Equal(t, MatchPartial, partial.MatchType)
	assert.Equal(t, PriorityPartial, partial.Priority)

	none := ScoreCandidate(candidate("d", model.RoleInternalTeacher, "5th"), absence, ledger, newOccupancy(), engine, DefaultConfig())
	assert.Equal(t, MatchNone, none.MatchType)
	assert.Equal(t, 0, none.Priority)
	assert.False(t, none.IsEligible())
}

func TestScoreCandidate_ClaimedPeriodsRemoved(t *testing.T) {
	absence := newAbsence(wednesday, "1st", "2nd")
	ledger := NewLedger(absence.PeriodsToCover)
	ledger.Claim("1st", Claim{Candidate: candidate("other", model.RoleExternalSubstitute)})

	score := ScoreCandidate(candidate("a", model.RoleInternalTeacher, "1st", "2nd"), absence, ledger, newOccupancy(), newEngine(), DefaultConfig())

	assert.Equal(t, []model.PeriodID{"2nd"}, score.Coverable)
	assert.Equal(t, PriorityPerfectConflicted, score.Priority)
}

func TestScoreCandidate_DepartmentMismatch(t *testing.T) {
	absence := newAbsence(wednesday, "1st")
	absence.Department = "Science"
	para := candidate("p", model.RoleParaprofessional, "1st")
	para.Department = "History"

	score := ScoreCandidate(para, absence, NewLedger(absence.PeriodsToCover), newOccupancy(), newEngine(), DefaultConfig())

	assert.Equal(t, 0, score.Priority)
	assert.Contains(t, score.Excluded, "department")
}

func TestScoreCandidate_AbsentTeacherNeverCoversThemselves(t *testing.T) {
	absence := newAbsence(wednesday, "1st")

	score := ScoreCandidate(candidate(absence.StaffID, model.RoleInternalTeacher, "1st"), absence, NewLedger(absence.PeriodsToCover), newOccupancy(), newEngine(), DefaultConfig())

	assert.False(t, score.IsEligible())
}

func TestScoreCandidate_BoostAndApproval(t *testing.T) {
	absence := newAbsence(wednesday, "1st", "2nd")
	absence.Subject = "Physics"
	engine := newEngine(
		model.ConstraintRule{
			ID:         "academic",
			Name:       "Specialists first",
			Category:   model.CategoryAcademic,
			Type:       model.RulePreference,
			Conditions: model.RuleConditions{RequireSubjectMatch: true},
			Actions:    model.RuleActions{BoostPriority: true},
		},
		model.ConstraintRule{
			ID:         "prep",
			Name:       "Prep period",
			Category:   model.CategoryPolicy,
			Type:       model.RuleSoft,
			Conditions: model.RuleConditions{ProtectPrepPeriod: true},
			Actions:    model.RuleActions{RequireApproval: true},
		},
	)
	occupancy := newOccupancy()
	occupancy.prep["t"] = "2nd"

	teacher := candidate("t", model.RoleInternalTeacher, "1st", "2nd")
	teacher.SubjectSpecialties = model.NewStringSet("physics")

	score := ScoreCandidate(teacher, absence, NewLedger(absence.PeriodsToCover), occupancy, engine, DefaultConfig())

	assert.Equal(t, PriorityPerfectComplete+10, score.Priority)
	assert.Empty(t, score.Approvals["1st"])
	assert.NotEmpty(t, score.Approvals["2nd"])
}

func TestResolveLoadLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoleLimits = map[model.Role]model.LoadLimit{
		model.RoleInternalTeacher: {MaxPeriodsPerDay: 5, MaxCoveragePerWeek: 3},
	}

	limit := ResolveLoadLimit(model.RoleInternalTeacher, nil, cfg)
	assert.Equal(t, model.LoadLimit{MaxPeriodsPerDay: 5, MaxCoveragePerWeek: 3}, limit)

	limit = ResolveLoadLimit(model.RoleInternalTeacher, &db.LoadLimit{MaxCoveragePerWeek: ptr(1)}, cfg)
	assert.Equal(t, model.LoadLimit{MaxPeriodsPerDay: 5, MaxCoveragePerWeek: 1}, limit)

	limit = ResolveLoadLimit(model.RoleParaprofessional, nil, cfg)
	assert.Equal(t, model.DefaultLoadLimit(), limit)

	limit = ResolveLoadLimit(model.RoleExternalSubstitute, &db.LoadLimit{MaxPeriodsPerDay: ptr(9)}, cfg)
	assert.Equal(t, 6, limit.MaxPeriodsPerDay)
}
