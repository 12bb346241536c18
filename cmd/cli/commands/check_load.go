package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/core/schedule"
	"github.com/jakechorley/staff-cover/pkg/core/services"
)

// CheckLoadCmd creates the checkLoad command
func CheckLoadCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkLoad <candidate_id> <date>",
		Short: "Show a candidate's load on a date (YYYY-MM-DD) against their limits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidateID := args[0]
			date, err := time.Parse(schedule.DateLayout, args[1])
			if err != nil {
				return fmt.Errorf("date must be in YYYY-MM-DD format, got: %s", args[1])
			}

			app.Logger.Debug("checkLoad command",
				zap.String("candidate_id", candidateID),
				zap.String("date", args[1]))

			result, err := services.CheckLoadLimits(app.Ctx, app.Database, app.Cfg, app.Logger, candidateID, date)
			if err != nil {
				return err
			}

			printLoadCheck(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printLoadCheck(w io.Writer, result *services.LoadCheckResult) {
	status := result.Status
	limit := status.Limit

	fmt.Fprintf(w, "\n%s (%s) on %s\n\n",
		displayName(result.Candidate.Name, result.Candidate.ID),
		result.Candidate.Role,
		result.Date.Format("2006-01-02 (Monday)"))

	fmt.Fprintf(w, "  %-22s %3d / %s\n", "Periods today", status.Daily, capText(limit.MaxPeriodsPerDay))
	fmt.Fprintf(w, "  %-22s %3d / %s\n", "Periods this week", status.Weekly, capText(limit.MaxPeriodsPerWeek))
	fmt.Fprintf(w, "  %-22s %3d / %s\n", "Longest run today", status.Consecutive, capText(limit.MaxConsecutivePeriods))
	fmt.Fprintf(w, "  %-22s %3d / %s\n", "Coverage this week", status.CoverageThisWeek, capText(limit.MaxCoveragePerWeek))
	fmt.Fprintln(w)

	if !status.IsExceeded {
		fmt.Fprintln(w, "✓ Within limits")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "⚠ Limits reached:")
	for _, v := range status.Violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
	fmt.Fprintln(w)
}

func capText(limit int) string {
	if limit <= 0 {
		return "no cap"
	}
	return fmt.Sprintf("%d", limit)
}
