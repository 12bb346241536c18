package coverage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// Pool is the decoded candidate list for one role tier
type Pool struct {
	Role       model.Role
	Candidates []*model.Candidate

	// Skipped counts malformed records left out of the pool
	Skipped int
}

// BuildPool fetches and decodes the candidates of one role, resolving their load limits
// and attaching their load from the day's occupancy.
// Malformed records are logged and skipped. Store failures wrap schedule.ErrDataUnavailable.
func BuildPool(ctx context.Context, store db.CandidateStore, role model.Role, occupancy Occupancy, cfg Config, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	rows, err := store.GetCandidates(ctx, string(role))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s candidates: %w", schedule.ErrDataUnavailable, role, err)
	}

	pool := &Pool{Role: role, Candidates: make([]*model.Candidate, 0, len(rows))}
	for _, row := range rows {
		if !row.Active {
			continue
		}

		candidate, err := decodeCandidate(row, role)
		if err != nil {
			logger.Warn("Skipping malformed candidate record",
				zap.String("candidate_id", row.ID),
				zap.String("role", string(role)),
				zap.Error(err))
			pool.Skipped++
			continue
		}

		stored, err := store.GetLoadLimit(ctx, candidate.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch load limit for %s: %w", schedule.ErrDataUnavailable, candidate.ID, err)
		}
		candidate.Limit = ResolveLoadLimit(role, stored, cfg)

		candidate.CurrentLoad = occupancy.DailyLoad(candidate.ID)
		candidate.DailyCoverage = occupancy.DailyCoverage(candidate.ID)
		candidate.WeeklyLoad = occupancy.WeeklyLoad(candidate.ID)
		candidate.WeeklyCoverage = occupancy.WeeklyCoverage(candidate.ID)

		pool.Candidates = append(pool.Candidates, candidate)
	}

	logger.Debug("Built candidate pool",
		zap.String("role", string(role)),
		zap.Int("candidates", len(pool.Candidates)),
		zap.Int("skipped", pool.Skipped))

	return pool, nil
}

// decodeCandidate parses the stored JSON fields of a candidate once
func decodeCandidate(row db.CandidateStaff, role model.Role) (*model.Candidate, error) {
	if strings.TrimSpace(row.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedCandidateRecord)
	}
	if row.Role != "" && model.Role(row.Role) != role {
		return nil, fmt.Errorf("%w: role %q listed under %s", ErrMalformedCandidateRecord, row.Role, role)
	}

	availability, err := model.ParseAvailability(row.Availability)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCandidateRecord, err)
	}

	specialties, err := model.ParseStringSet(row.SubjectSpecialties)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCandidateRecord, err)
	}

	name := row.Name
	if name == "" {
		name = row.ID
	}

	return &model.Candidate{
		ID:                 row.ID,
		Name:               name,
		Role:               role,
		Availability:       availability,
		SubjectSpecialties: specialties,
		Department:         strings.TrimSpace(row.Department),
		PreferredTeacherID: strings.TrimSpace(row.PreferredTeacherID),
	}, nil
}

// ResolveLoadLimit combines the stored per-candidate limit, the configured role limit and
// the default. Unset stored fields fall through to the role limit. Substitutes are
// additionally held to the substitute daily cap.
func ResolveLoadLimit(role model.Role, stored *db.LoadLimit, cfg Config) model.LoadLimit {
	cfg = cfg.withDefaults()

	limit, ok := cfg.RoleLimits[role]
	if !ok {
		limit = model.DefaultLoadLimit()
	}
	if limit.MaxPeriodsPerDay <= 0 {
		limit.MaxPeriodsPerDay = model.DefaultMaxPeriodsPerDay
	}

	if stored != nil {
		if stored.MaxPeriodsPerDay != nil && *stored.MaxPeriodsPerDay > 0 {
			limit.MaxPeriodsPerDay = *stored.MaxPeriodsPerDay
		}
		if stored.MaxPeriodsPerWeek != nil {
			limit.MaxPeriodsPerWeek = *stored.MaxPeriodsPerWeek
		}
		if stored.MaxConsecutivePeriods != nil {
			limit.MaxConsecutivePeriods = *stored.MaxConsecutivePeriods
		}
		if stored.MaxCoveragePerWeek != nil {
			limit.MaxCoveragePerWeek = *stored.MaxCoveragePerWeek
		}
	}

	if role == model.RoleExternalSubstitute {
		limit.MaxPeriodsPerDay = min(limit.MaxPeriodsPerDay, cfg.SubstituteDailyCap)
	}

	return limit
}
