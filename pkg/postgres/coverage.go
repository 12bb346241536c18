package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/db"
)

// GetCoverageAssignmentsForDate retrieves every coverage row on a date (YYYY-MM-DD)
func (d *DB) GetCoverageAssignmentsForDate(ctx context.Context, date string) ([]db.CoverageAssignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, absence_id, coverage_date::text, periods, assignee_id, assignee_role, kind, reason, requires_approval
		FROM coverage_assignment
		WHERE coverage_date = $1
		ORDER BY absence_id, created_at, id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.CoverageAssignment
	for rows.Next() {
		var a db.CoverageAssignment
		var assigneeID, assigneeRole, kind, reason *string
		if err := rows.Scan(&a.ID, &a.AbsenceID, &a.Date, &a.Periods, &assigneeID, &assigneeRole, &kind, &reason, &a.RequiresApproval); err != nil {
			return nil, fmt.Errorf("failed to scan coverage assignment: %w", err)
		}
		a.AssigneeID = valueOf(assigneeID)
		a.AssigneeRole = valueOf(assigneeRole)
		a.Kind = valueOf(kind)
		a.Reason = valueOf(reason)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coverage assignments: %w", err)
	}

	return assignments, nil
}

// ReplaceCoverageAssignments deletes the absence's coverage rows and inserts the new ones in a
// single transaction, so readers never see a half-written run
func (d *DB) ReplaceCoverageAssignments(ctx context.Context, absenceID string, assignments []db.CoverageAssignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM coverage_assignment WHERE absence_id = $1`, absenceID)
	if err != nil {
		return fmt.Errorf("failed to delete coverage assignments: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO coverage_assignment
				(id, absence_id, coverage_date, periods, assignee_id, assignee_role, kind, reason, requires_approval)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, absenceID, a.Date, a.Periods, nullable(a.AssigneeID), nullable(a.AssigneeRole), nullable(a.Kind), nullable(a.Reason), a.RequiresApproval)
		if err != nil {
			return fmt.Errorf("failed to insert coverage assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	d.logger.Debug("Replaced coverage assignments",
		zap.String("absence_id", absenceID),
		zap.Int64("deleted", tag.RowsAffected()),
		zap.Int("inserted", len(assignments)))

	return nil
}
