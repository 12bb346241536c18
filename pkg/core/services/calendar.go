package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/schedule"
)

type closureRule struct {
	option rrule.ROption
	start  time.Time // zero when the rule has no anchor
	reason string
}

// ClosureCalendar answers whether the school is closed on a date, from the configured
// closure rrules
type ClosureCalendar struct {
	rules  []closureRule
	logger *zap.Logger
}

// NewClosureCalendar parses the configured closures
func NewClosureCalendar(closures []config.Closure, logger *zap.Logger) (*ClosureCalendar, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	calendar := &ClosureCalendar{rules: make([]closureRule, 0, len(closures)), logger: logger}

	for i, closure := range closures {
		option, err := rrule.StrToROption(closure.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for closure %d: %w", i, err)
		}
		// Bounds are checked when the rule is built, independent of its start
		if _, err := rrule.NewRRule(*option); err != nil {
			return nil, fmt.Errorf("invalid rrule for closure %d: %w", i, err)
		}

		var start time.Time
		if closure.Start != "" {
			start, err = time.Parse(schedule.DateLayout, closure.Start)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start for closure %d: %w", i, err)
			}
		}

		calendar.rules = append(calendar.rules, closureRule{
			option: *option,
			start:  start,
			reason: closure.Reason,
		})

		logger.Debug("Loaded closure",
			zap.Int("index", i),
			zap.String("rrule", closure.RRule),
			zap.String("reason", closure.Reason))
	}

	return calendar, nil
}

// ClosureReason returns the reason of the first closure that includes date
func (c *ClosureCalendar) ClosureReason(date time.Time) (string, bool) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	for _, cr := range c.rules {
		option := cr.option
		if !cr.start.IsZero() {
			option.Dtstart = cr.start
		} else {
			// Unanchored rules are matched from a week before the date
			option.Dtstart = dayStart.AddDate(0, 0, -7)
		}

		// RRule iteration is stateful, so each lookup builds its own
		rule, err := rrule.NewRRule(option)
		if err != nil {
			c.logger.Warn("Skipping closure with invalid rrule",
				zap.String("reason", cr.reason),
				zap.String("date", dayStart.Format(schedule.DateLayout)),
				zap.Error(err))
			continue
		}

		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return cr.reason, true
		}
	}

	return "", false
}
