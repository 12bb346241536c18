package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/db"
)

// ErrDataUnavailable is returned when the backing store cannot be read. It is fatal to a run.
var ErrDataUnavailable = errors.New("schedule data unavailable")

// DateLayout is the storage format of dates
const DateLayout = "2006-01-02"

// Reader builds day snapshots from the schedule store
type Reader struct {
	store  db.ScheduleStore
	logger *zap.Logger
}

// NewReader creates a new Reader
func NewReader(store db.ScheduleStore, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{store: store, logger: logger}
}

// ReadDay snapshots the given date. Coverage rows belonging to excludeAbsenceID are ignored so
// that re-running an absence does not see its own earlier assignments as conflicts.
//
// The snapshot also reads the other school days (Monday to Friday) of the date's week to derive
// weekly load and coverage counts.
func (r *Reader) ReadDay(ctx context.Context, date time.Time, excludeAbsenceID string) (*Snapshot, error) {
	snap := newSnapshot(date)
	schedules := make(map[time.Weekday][]db.ScheduleEntry)

	for _, day := range SchoolWeek(date) {
		dayKey := day.Format(DateLayout)
		isTarget := sameDate(day, date)

		absences, err := r.store.GetAbsencesForDate(ctx, dayKey)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch absences for %s: %w", ErrDataUnavailable, dayKey, err)
		}
		absentToday := make(map[string]bool, len(absences))
		for _, a := range absences {
			absentToday[a.StaffID] = true
		}

		assignments, err := r.store.GetCoverageAssignmentsForDate(ctx, dayKey)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch coverage assignments for %s: %w", ErrDataUnavailable, dayKey, err)
		}

		entries, ok := schedules[day.Weekday()]
		if !ok {
			entries, err = r.store.GetScheduleForDay(ctx, model.WeekdayKey(day.Weekday()))
			if err != nil {
				return nil, fmt.Errorf("%w: failed to fetch schedule for %s: %w", ErrDataUnavailable, day.Weekday(), err)
			}
			schedules[day.Weekday()] = entries
		}

		teaching := make(map[string]periodSet)
		prep := make(map[string]periodSet)
		for _, entry := range entries {
			if absentToday[entry.StaffID] {
				continue
			}
			period := model.PeriodID(strings.TrimSpace(entry.Period))
			if ScheduleKindOf(entry.Kind).CountsAsLoad() {
				addPeriod(teaching, entry.StaffID, period)
			} else {
				addPeriod(prep, entry.StaffID, period)
			}
		}

		covering := make(map[string]periodSet)
		for _, row := range assignments {
			if row.AssigneeID == "" || row.AbsenceID == excludeAbsenceID {
				continue
			}
			for _, p := range row.Periods {
				if addPeriod(covering, row.AssigneeID, model.PeriodID(p)) {
					snap.weeklyCoverage[row.AssigneeID]++
				}
			}
		}

		for staffID, set := range teaching {
			snap.weeklyLoad[staffID] += len(set)
		}
		for staffID, set := range covering {
			for p := range set {
				if !teaching[staffID][p] {
					snap.weeklyLoad[staffID]++
				}
			}
		}

		if isTarget {
			snap.absent = absentToday
			snap.teaching = teaching
			snap.prep = prep
			snap.covering = covering
		}
	}

	r.logger.Debug("Read day snapshot",
		zap.String("date", date.Format(DateLayout)),
		zap.Int("absent_staff", len(snap.absent)),
		zap.Int("teaching_staff", len(snap.teaching)),
		zap.Int("covering_staff", len(snap.covering)))

	return snap, nil
}

// SchoolWeek returns Monday to Friday of the week containing date. A weekend date yields only itself.
func SchoolWeek(date time.Time) []time.Time {
	if model.IsWeekend(date.Weekday()) {
		return []time.Time{date}
	}
	offset := (int(date.Weekday()) + 6) % 7
	monday := date.AddDate(0, 0, -offset)

	days := make([]time.Time, 5)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// ScheduleKindOf converts a stored kind, treating blank or unknown kinds as classes
func ScheduleKindOf(kind string) model.ScheduleKind {
	switch model.ScheduleKind(strings.ToLower(strings.TrimSpace(kind))) {
	case model.SchedulePrep:
		return model.SchedulePrep
	case model.ScheduleDuty:
		return model.ScheduleDuty
	default:
		return model.ScheduleClass
	}
}

// ParseAbsence converts a stored absence into the domain type
func ParseAbsence(row db.Absence) (*model.Absence, error) {
	date, err := time.Parse(DateLayout, row.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid absence date %q: %w", row.Date, err)
	}

	// The date decides the weekday; a stored day of week must agree with it
	weekday := date.Weekday()
	if row.DayOfWeek != "" {
		stored, err := model.ParseWeekday(row.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("invalid absence day of week: %w", err)
		}
		if stored != weekday {
			return nil, fmt.Errorf("absence day of week %s does not match date %s (%s)", stored, row.Date, weekday)
		}
	}

	periods := make([]model.PeriodID, 0, len(row.PeriodsToCover))
	for _, p := range row.PeriodsToCover {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(periods, model.PeriodID(p)) {
			continue
		}
		periods = append(periods, model.PeriodID(p))
	}

	status := model.AbsenceStatus(row.Status)
	if status == "" {
		status = model.AbsencePending
	}

	return &model.Absence{
		ID:             row.ID,
		SchoolID:       row.SchoolID,
		StaffID:        row.StaffID,
		StaffName:      row.StaffName,
		Date:           date,
		Weekday:        weekday,
		PeriodsToCover: periods,
		Subject:        row.Subject,
		Department:     row.Department,
		Status:         status,
	}, nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
