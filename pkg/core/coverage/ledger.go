package coverage

import (
	"slices"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// Claim is one period taken by a candidate during a run
type Claim struct {
	Candidate        *model.Candidate
	Reason           string
	RequiresApproval bool
	Warnings         []string

	// Evaluated is the cumulative number of candidates scored when the claim was made
	Evaluated int
}

// Ledger records which candidate claimed each needed period in one run.
// The first claim on a period wins; later claims are refused.
type Ledger struct {
	needed []model.PeriodID
	claims map[model.PeriodID]Claim
}

// NewLedger creates an empty ledger over the needed periods, in order
func NewLedger(needed []model.PeriodID) *Ledger {
	return &Ledger{
		needed: needed,
		claims: make(map[model.PeriodID]Claim, len(needed)),
	}
}

// IsClaimed returns true if the period already has a claim
func (l *Ledger) IsClaimed(period model.PeriodID) bool {
	_, ok := l.claims[period]
	return ok
}

// Claim records the claim unless the period is already taken or not needed
func (l *Ledger) Claim(period model.PeriodID, claim Claim) bool {
	if l.IsClaimed(period) {
		return false
	}
	if !slices.Contains(l.needed, period) {
		return false
	}
	l.claims[period] = claim
	return true
}

// Get returns the claim on a period
func (l *Ledger) Get(period model.PeriodID) (Claim, bool) {
	c, ok := l.claims[period]
	return c, ok
}

// Uncovered returns the needed periods without a claim, in order
func (l *Ledger) Uncovered() []model.PeriodID {
	var uncovered []model.PeriodID
	for _, p := range l.needed {
		if !l.IsClaimed(p) {
			uncovered = append(uncovered, p)
		}
	}
	return uncovered
}

// Complete returns true once every needed period is claimed
func (l *Ledger) Complete() bool {
	return len(l.Uncovered()) == 0
}

// Assignees returns the distinct candidates holding claims, in period order
func (l *Ledger) Assignees() []*model.Candidate {
	seen := make(map[string]bool)
	var assignees []*model.Candidate
	for _, p := range l.needed {
		c, ok := l.claims[p]
		if !ok || seen[c.Candidate.ID] {
			continue
		}
		seen[c.Candidate.ID] = true
		assignees = append(assignees, c.Candidate)
	}
	return assignees
}
