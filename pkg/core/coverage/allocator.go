package coverage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/rules"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// Request holds the inputs of one assignment run
type Request struct {
	Absence   *model.Absence
	Occupancy Occupancy
	Engine    *rules.Engine
	Store     db.CandidateStore
	Calendar  Calendar
	Config    Config
}

// Assign runs the cascading assignment for one absence.
//
// Tiers are tried in the configured role order until every period is claimed. Within a tier
// all candidates are scored in parallel, then claims are made sequentially in descending
// priority so the first claim on a period wins. A single external substitute covering the
// whole absence collapses to one record; otherwise there is one record per period.
//
// Nothing is persisted here. A store failure aborts the run with no outcome.
func Assign(ctx context.Context, req Request, logger *zap.Logger) (*Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := req.Config.withDefaults()
	absence := req.Absence

	if reason, closed := NonSchoolDay(absence, req.Calendar); closed {
		logger.Debug("Absence is not on a school day",
			zap.String("absence_id", absence.ID),
			zap.String("reason", reason))
		return notSchoolDay(absence, reason), nil
	}

	ledger := NewLedger(absence.PeriodsToCover)
	outcome := &Outcome{}

	for _, role := range cfg.RolePriority {
		if ledger.Complete() {
			break
		}

		start := time.Now()
		pool, err := BuildPool(ctx, req.Store, role, req.Occupancy, cfg, logger)
		if err != nil {
			return nil, err
		}

		scores, err := scoreTier(ctx, pool.Candidates, absence, ledger, req, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to score %s candidates: %w", role, err)
		}
		outcome.CandidatesEvaluated += len(scores)

		eligible := rankEligible(scores)

		claimed := 0
		for _, s := range eligible {
			reason := s.reason()
			for _, p := range s.Coverable {
				if ledger.Claim(p, Claim{
					Candidate:        s.Candidate,
					Reason:           reason,
					RequiresApproval: len(s.Approvals[p]) > 0,
					Warnings:         s.Approvals[p],
					Evaluated:        outcome.CandidatesEvaluated,
				}) {
					claimed++
				}
			}
			if ledger.Complete() {
				break
			}
		}

		summary := TierSummary{
			Role:      role,
			Pool:      len(pool.Candidates),
			Skipped:   pool.Skipped,
			Eligible:  len(eligible),
			Claimed:   claimed,
			Duration:  time.Since(start),
			Attempted: true,
		}
		outcome.Tiers = append(outcome.Tiers, summary)

		logger.Debug("Tier complete",
			zap.String("absence_id", absence.ID),
			zap.String("role", string(role)),
			zap.Int("pool", summary.Pool),
			zap.Int("eligible", summary.Eligible),
			zap.Int("claimed", summary.Claimed),
			zap.Int("uncovered", len(ledger.Uncovered())))
	}

	buildOutcome(outcome, absence, ledger)
	return outcome, nil
}

// scoreTier scores every candidate in the tier concurrently
func scoreTier(ctx context.Context, candidates []*model.Candidate, absence *model.Absence, ledger *Ledger, req Request, cfg Config) ([]*Score, error) {
	scores := make([]*Score, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.ScoringConcurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = ScoreCandidate(c, absence, ledger, req.Occupancy, req.Engine, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

// rankEligible filters to candidates that can cover something and orders them for the
// claim walk: priority, then coverable count, then name and id for a stable result
func rankEligible(scores []*Score) []*Score {
	eligible := make([]*Score, 0, len(scores))
	for _, s := range scores {
		if s.IsEligible() {
			eligible = append(eligible, s)
		}
	}

	slices.SortStableFunc(eligible, func(a, b *Score) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(len(b.Coverable), len(a.Coverable)); c != 0 {
			return c
		}
		if c := strings.Compare(a.Candidate.Name, b.Candidate.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Candidate.ID, b.Candidate.ID)
	})

	return eligible
}

// NonSchoolDay returns the not-a-school-day reason when the absence falls on a weekend or a
// closure
func NonSchoolDay(absence *model.Absence, calendar Calendar) (string, bool) {
	if model.IsWeekend(absence.Weekday) {
		return ReasonNotSchoolDay, true
	}
	if calendar == nil {
		return "", false
	}
	if why, closed := calendar.ClosureReason(absence.Date); closed {
		if why == "" {
			return ReasonNotSchoolDay, true
		}
		return fmt.Sprintf("%s (%s)", ReasonNotSchoolDay, why), true
	}
	return "", false
}

func notSchoolDay(absence *model.Absence, reason string) *Outcome {
	return &Outcome{
		Results: []PeriodResult{{
			Periods: slices.Clone(absence.PeriodsToCover),
			Reason:  reason,
		}},
		NotSchoolDay: true,
		Status:       model.AbsencePending,
	}
}

// buildOutcome turns the ledger into per-period results and the records to persist
func buildOutcome(outcome *Outcome, absence *model.Absence, ledger *Ledger) {
	assignees := ledger.Assignees()
	complete := ledger.Complete()

	for _, p := range absence.PeriodsToCover {
		result := PeriodResult{
			Period:              p,
			Periods:             []model.PeriodID{p},
			Reason:              ReasonExhausted,
			CandidatesEvaluated: outcome.CandidatesEvaluated,
		}
		if claim, ok := ledger.Get(p); ok {
			result.AssignedID = claim.Candidate.ID
			result.AssignedName = claim.Candidate.Name
			result.AssignedRole = claim.Candidate.Role
			result.Kind = claim.Candidate.Role.Kind()
			result.Reason = claim.Reason
			result.CandidatesEvaluated = claim.Evaluated
			result.RequiresApproval = claim.RequiresApproval
			result.Warnings = claim.Warnings
		}
		outcome.Results = append(outcome.Results, result)
	}

	switch {
	case complete && len(assignees) > 0:
		outcome.Status = model.AbsenceAssigned
	case len(assignees) > 0:
		outcome.Status = model.AbsencePartiallyAssigned
	default:
		outcome.Status = model.AbsencePending
	}

	if complete && len(assignees) == 1 && assignees[0].Role == model.RoleExternalSubstitute {
		outcome.Collapsed = true
		outcome.Records = []model.CoverageRecord{collapsedRecord(absence, outcome.Results)}
		return
	}

	outcome.Records = make([]model.CoverageRecord, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		outcome.Records = append(outcome.Records, model.CoverageRecord{
			AbsenceID:        absence.ID,
			Date:             absence.Date,
			Periods:          []model.PeriodID{r.Period},
			AssigneeID:       r.AssignedID,
			AssigneeName:     r.AssignedName,
			AssigneeRole:     r.AssignedRole,
			Kind:             r.Kind,
			Reason:           r.Reason,
			RequiresApproval: r.RequiresApproval,
		})
	}
}

// collapsedRecord is the single Substitute record spanning every period
func collapsedRecord(absence *model.Absence, results []PeriodResult) model.CoverageRecord {
	first := results[0]
	record := model.CoverageRecord{
		AbsenceID:    absence.ID,
		Date:         absence.Date,
		Periods:      slices.Clone(absence.PeriodsToCover),
		AssigneeID:   first.AssignedID,
		AssigneeName: first.AssignedName,
		AssigneeRole: first.AssignedRole,
		Kind:         model.KindSubstitute,
		Reason:       first.Reason,
	}
	for _, r := range results {
		record.RequiresApproval = record.RequiresApproval || r.RequiresApproval
	}
	return record
}
