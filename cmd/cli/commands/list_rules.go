package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/staff-cover/pkg/core/model"
	"github.com/jakechorley/staff-cover/pkg/core/services"
)

// ListRulesCmd creates the listRules command
func ListRulesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRules",
		Short: "List the active constraint rules and period layout of the configured school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := services.ListRules(app.Ctx, app.Database, app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			printRuleSet(cmd.OutOrStdout(), ruleSet)
			return nil
		},
	}
}

func printRuleSet(w io.Writer, ruleSet *services.RuleSet) {
	fmt.Fprintf(w, "\nPeriods:\n")
	for _, p := range ruleSet.Periods {
		fmt.Fprintf(w, "  %-8s %s\n", p.Period, p.Type)
	}

	fmt.Fprintf(w, "\nFound %d active rules:\n\n", len(ruleSet.Rules))
	for _, r := range ruleSet.Rules {
		fmt.Fprintf(w, "  %3d. %s [%s, %s] (%s)\n", r.Priority, r.Name, r.Category, r.Type, r.ID)
		if effect := ruleEffect(r.Actions); effect != "" {
			fmt.Fprintf(w, "       %s\n", effect)
		}
	}
	fmt.Fprintln(w)
}

// ruleEffect summarizes what a firing rule does
func ruleEffect(actions model.RuleActions) string {
	var effects []string
	if actions.PreventAssignment {
		effects = append(effects, "blocks")
	}
	if actions.RequireApproval {
		effects = append(effects, "needs approval")
	}
	if actions.BoostPriority {
		effects = append(effects, "boosts priority")
	}

	text := strings.Join(effects, ", ")
	if actions.Message != "" {
		if text != "" {
			text += ": "
		}
		text += actions.Message
	}
	return text
}

func joinPeriods(periods []model.PeriodID) string {
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
