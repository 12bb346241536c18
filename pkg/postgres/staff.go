package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/staff-cover/pkg/db"
)

// GetCandidates retrieves every staff record of a role, active or not
func (d *DB) GetCandidates(ctx context.Context, role string) ([]db.CandidateStaff, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, school_id, name, role, availability::text, subject_specialties::text,
		       department, preferred_teacher_id, active
		FROM candidate_staff
		WHERE role = $1
		ORDER BY id
	`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []db.CandidateStaff
	for rows.Next() {
		var c db.CandidateStaff
		var availability, specialties, department, preferred *string
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Role, &availability, &specialties, &department, &preferred, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Availability = valueOf(availability)
		c.SubjectSpecialties = valueOf(specialties)
		c.Department = valueOf(department)
		c.PreferredTeacherID = valueOf(preferred)
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}

// GetLoadLimit retrieves the load limit of a staff member, or nil when none is stored
func (d *DB) GetLoadLimit(ctx context.Context, staffID string) (*db.LoadLimit, error) {
	var l db.LoadLimit
	err := d.pool.QueryRow(ctx, `
		SELECT id, staff_id, max_periods_per_day, max_periods_per_week,
		       max_consecutive_periods, max_coverage_per_week
		FROM load_limit
		WHERE staff_id = $1
	`, staffID).Scan(&l.ID, &l.StaffID, &l.MaxPeriodsPerDay, &l.MaxPeriodsPerWeek, &l.MaxConsecutivePeriods, &l.MaxCoveragePerWeek)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query load limit: %w", err)
	}
	return &l, nil
}

// GetScheduleForDay retrieves the timetable entries for a weekday ("monday")
func (d *DB) GetScheduleForDay(ctx context.Context, dayOfWeek string) ([]db.ScheduleEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, staff_id, day_of_week, period, kind, subject
		FROM schedule_entry
		WHERE lower(day_of_week) = lower($1)
		ORDER BY staff_id, period
	`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var entries []db.ScheduleEntry
	for rows.Next() {
		var e db.ScheduleEntry
		var subject *string
		if err := rows.Scan(&e.ID, &e.StaffID, &e.DayOfWeek, &e.Period, &e.Kind, &subject); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.Subject = valueOf(subject)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule: %w", err)
	}

	return entries, nil
}
