package commands

import (
	"github.com/goblinsan/mixer/pkg/draft"
	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planCreateCmd, planStatusCmd, planCompleteCmd,
		newListCmd(types.LabelPlan, "plans"), newShowCmd("plan"))

	planCreateCmd.Flags().StringP("goal", "g", "", "identifier of the parent goal")
	planCreateCmd.MarkFlagRequired("goal")
	planCreateCmd.Flags().String("state", "", "initial status (default draft)")
	planCreateCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
	planCreateCmd.Flags().Bool("keep-draft", false, "keep the draft file after creating the plan")

	planStatusCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
	planCompleteCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create plans under goals and move them through their lifecycle",
}

var planCreateCmd = &cobra.Command{
	Use:   "create <draft.md> --goal <identifier>",
	Short: "Create a plan under a goal from a markdown draft",
	Long: `Create a plan in Linear from a markdown draft and attach it to a goal.
A goal in Todo moves to In Progress with a comment naming the plan. A goal in
any other status is left alone and a warning is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, _ := cmd.Flags().GetString("goal")
		state, _ := cmd.Flags().GetString("state")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		store := draft.NewStore(nil)
		d, err := store.Read(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).CreatePlan(cmd.Context(), engine.PlanInput{
			Goal:        goal,
			Title:       d.Title,
			Description: d.Content,
			State:       state,
		})
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return err
		}
		if !dryRun {
			consumeDraft(cmd, store, d)
		}
		return report.Err()
	},
}

var planStatusCmd = &cobra.Command{
	Use:   "status <identifier> <status>",
	Short: "Move a plan to a new status",
	Long: `Move a plan to draft, todo, doing, done or closed and record the change
as a comment. Moving to done runs the same checks as "plan complete".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).SetPlanStatus(cmd.Context(), args[0], args[1])
		return showReport(cmd, report, err)
	},
}

var planCompleteCmd = &cobra.Command{
	Use:   "complete <identifier>",
	Short: "Mark a plan and its goal Done",
	Long: `Mark a plan Done with a timestamped comment, then its parent goal.
A plan outside In Progress, or a goal outside In Progress, asks for
confirmation first. Nothing is written when confirmation is declined.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).CompletePlan(cmd.Context(), args[0])
		return showReport(cmd, report, err)
	},
}
