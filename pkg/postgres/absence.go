package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/staff-cover/pkg/db"
)

const absenceColumns = `id, school_id, staff_id, staff_name, absence_date, day_of_week, periods_to_cover, subject, department, status`

// GetAbsence retrieves one absence, or nil when it does not exist
func (d *DB) GetAbsence(ctx context.Context, absenceID string) (*db.Absence, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+absenceColumns+` FROM absence WHERE id = $1`, absenceID)

	a, err := scanAbsence(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query absence: %w", err)
	}
	return a, nil
}

// GetAbsencesForDate retrieves every absence on a date (YYYY-MM-DD)
func (d *DB) GetAbsencesForDate(ctx context.Context, date string) ([]db.Absence, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+absenceColumns+`
		FROM absence
		WHERE absence_date = $1
		ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var absences []db.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		absences = append(absences, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating absences: %w", err)
	}

	return absences, nil
}

// UpdateAbsenceStatus sets the coverage status of an absence
func (d *DB) UpdateAbsenceStatus(ctx context.Context, absenceID string, status string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE absence SET status = $2 WHERE id = $1`, absenceID, status)
	if err != nil {
		return fmt.Errorf("failed to update absence status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("absence %s not found", absenceID)
	}
	return nil
}

func scanAbsence(row pgx.Row) (*db.Absence, error) {
	var a db.Absence
	var date time.Time
	var dayOfWeek, subject, department *string
	if err := row.Scan(&a.ID, &a.SchoolID, &a.StaffID, &a.StaffName, &date, &dayOfWeek, &a.PeriodsToCover, &subject, &department, &a.Status); err != nil {
		return nil, err
	}
	a.Date = date.Format("2006-01-02")
	a.DayOfWeek = valueOf(dayOfWeek)
	a.Subject = valueOf(subject)
	a.Department = valueOf(department)
	return &a, nil
}
