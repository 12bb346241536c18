package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/staff-cover/pkg/db"
)

// GetActiveRules retrieves the active constraint rules of a school in priority order
func (d *DB) GetActiveRules(ctx context.Context, schoolID string) ([]db.ConstraintRule, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, school_id, name, category, rule_type, conditions::text, actions::text, priority, active
		FROM constraint_rule
		WHERE school_id = $1 AND active
		ORDER BY priority, id
	`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraint rules: %w", err)
	}
	defer rows.Close()

	var rules []db.ConstraintRule
	for rows.Next() {
		var r db.ConstraintRule
		var conditions, actions *string
		if err := rows.Scan(&r.ID, &r.SchoolID, &r.Name, &r.Category, &r.RuleType, &conditions, &actions, &r.Priority, &r.Active); err != nil {
			return nil, fmt.Errorf("failed to scan constraint rule: %w", err)
		}
		r.Conditions = valueOf(conditions)
		r.Actions = valueOf(actions)
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constraint rules: %w", err)
	}

	return rules, nil
}

// GetPeriodConfigs retrieves the period definitions of a school in day order
func (d *DB) GetPeriodConfigs(ctx context.Context, schoolID string) ([]db.PeriodConfig, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT school_id, period, position, type
		FROM period_config
		WHERE school_id = $1
		ORDER BY position
	`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query period configs: %w", err)
	}
	defer rows.Close()

	var periods []db.PeriodConfig
	for rows.Next() {
		var p db.PeriodConfig
		if err := rows.Scan(&p.SchoolID, &p.Period, &p.Position, &p.Type); err != nil {
			return nil, fmt.Errorf("failed to scan period config: %w", err)
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period configs: %w", err)
	}

	return periods, nil
}
