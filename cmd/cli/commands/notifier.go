package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/coverage"
	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// LogNotifier reports coverage to the log instead of contacting anyone
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyCoverage(ctx context.Context, absence *model.Absence, results []coverage.PeriodResult) error {
	notified := make(map[string]bool)
	for _, r := range results {
		if !r.IsAssigned() || notified[r.AssignedID] {
			continue
		}
		notified[r.AssignedID] = true

		n.logger.Info("Coverage notification",
			zap.String("absence_id", absence.ID),
			zap.String("assignee_id", r.AssignedID),
			zap.String("assignee_name", r.AssignedName),
			zap.Strings("periods", periodsFor(results, r.AssignedID)))
	}
	return nil
}

// periodsFor lists the periods assigned to one assignee
func periodsFor(results []coverage.PeriodResult, assigneeID string) []string {
	var periods []string
	for _, r := range results {
		if r.AssignedID == assigneeID {
			periods = append(periods, string(r.Period))
		}
	}
	return periods
}
