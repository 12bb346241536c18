package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/core/services"
)

// AssignCoverCmd creates the assignCover command
func AssignCoverCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignCover <absence_id> [absence_id...]",
		Short: "Assign cover for every period of one or more absences",
		Long: `Assign cover for every period of one or more absences.

Candidates are tried tier by tier in the configured role order. Earlier assignments for an
absence are replaced, so running the command again with unchanged data gives the same result.
When running against a data file the assignments are written back to it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var saver datasetSaver
			if app.Files != nil {
				saver = app.Files
			}
			return assignAbsences(app.Ctx, app.Service, saver, cmd.OutOrStdout(), app.Logger, args)
		},
	}
}

type coverageAssigner interface {
	AssignCoverage(ctx context.Context, absenceID string) (*services.AssignCoverageResult, error)
}

type datasetSaver interface {
	Save() error
}

// assignAbsences assigns each absence in turn. With a data file, each persisted result is
// saved before the next absence runs.
func assignAbsences(ctx context.Context, assigner coverageAssigner, saver datasetSaver, out io.Writer, logger *zap.Logger, absenceIDs []string) error {
	for _, absenceID := range absenceIDs {
		logger.Debug("assignCover command", zap.String("absence_id", absenceID))

		result, err := assigner.AssignCoverage(ctx, absenceID)
		if err != nil {
			return fmt.Errorf("failed to assign cover for %s: %w", absenceID, err)
		}

		printCoverageResult(out, result)

		if saver == nil || result.NotSchoolDay {
			continue
		}
		if err := saver.Save(); err != nil {
			return fmt.Errorf("failed to save data file after %s: %w", absenceID, err)
		}
		logger.Debug("Saved data file", zap.String("absence_id", absenceID))
	}

	return nil
}

func printCoverageResult(w io.Writer, result *services.AssignCoverageResult) {
	absence := result.Absence
	fmt.Fprintf(w, "\nAbsence %s: %s on %s\n", absence.ID, displayName(absence.StaffName, absence.StaffID), absence.Date.Format(schedule.DateLayout))

	if result.NotSchoolDay {
		r := result.Results[0]
		fmt.Fprintf(w, "  %s (periods: %s)\n\n", r.Reason, joinPeriods(r.Periods))
		return
	}

	fmt.Fprintf(w, "Status: %s", result.Status)
	if result.Collapsed {
		fmt.Fprintf(w, " (single substitute for the whole absence)")
	}
	fmt.Fprintf(w, "\n\n")

	for _, r := range result.Results {
		if !r.IsAssigned() {
			fmt.Fprintf(w, "  %-6s ✗ %s\n", r.Period, r.Reason)
			continue
		}

		fmt.Fprintf(w, "  %-6s ✓ %s (%s) - %s\n", r.Period, displayName(r.AssignedName, r.AssignedID), r.Kind, r.Reason)
		if r.RequiresApproval {
			fmt.Fprintf(w, "         ⚠ requires approval: %s\n", strings.Join(r.Warnings, "; "))
		}
	}

	fmt.Fprintf(w, "\nCandidates evaluated: %d\n", result.CandidatesEvaluated)
	for _, tier := range result.Tiers {
		fmt.Fprintf(w, "  %-20s pool %d, eligible %d, claimed %d", tier.Role, tier.Pool, tier.Eligible, tier.Claimed)
		if tier.Skipped > 0 {
			fmt.Fprintf(w, ", skipped %d malformed", tier.Skipped)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s [%s]", name, id)
}
