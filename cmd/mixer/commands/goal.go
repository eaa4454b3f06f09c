package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goblinsan/mixer/pkg/draft"
	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalCreateCmd, goalUpdateCmd, goalEditCmd, goalAnalyzeCmd,
		newListCmd(types.LabelGoal, "goals"), newShowCmd("goal"))

	goalCreateCmd.Flags().String("state", "", "initial status (default draft)")
	goalCreateCmd.Flags().IntSlice("close", nil, "backlog issue numbers to close into the goal")
	goalCreateCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
	goalCreateCmd.Flags().Bool("keep-draft", false, "keep the draft file after creating the goal")

	goalUpdateCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
	goalUpdateCmd.Flags().Bool("keep-draft", false, "keep the draft file after updating the goal")

	goalEditCmd.Flags().StringP("out", "o", "", "draft path (default drafts/<identifier>.md)")
}

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Create, update and inspect goals",
}

var goalCreateCmd = &cobra.Command{
	Use:   "create <draft.md>",
	Short: "Create a goal from a markdown draft",
	Long: `Create a goal in Linear from a markdown draft. The first "# " heading
becomes the title and the whole file becomes the description. Backlog issues
passed with --close get a comment pointing at the goal and are closed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")
		closeNums, _ := cmd.Flags().GetIntSlice("close")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		store := draft.NewStore(nil)
		d, err := store.Read(args[0])
		if err != nil {
			return err
		}
		needs := linearService
		if len(closeNums) > 0 {
			needs |= githubService
		}
		a, err := newApp(needs)
		if err != nil {
			return err
		}

		report, err := a.engine(dryRun).CreateGoal(cmd.Context(), engine.GoalInput{
			Title:       d.Title,
			Description: d.Content,
			State:       state,
			Backlog:     closeNums,
		})
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		if !dryRun {
			consumeDraft(cmd, store, d)
		}
		return report.Err()
	},
}

var goalUpdateCmd = &cobra.Command{
	Use:   "update <identifier> <draft.md>",
	Short: "Replace a goal's title and description from a draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		store := draft.NewStore(nil)
		d, err := store.Read(args[1])
		if err != nil {
			return err
		}
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).UpdateGoal(cmd.Context(), args[0], d.Title, d.Content)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		if !dryRun {
			consumeDraft(cmd, store, d)
		}
		return nil
	},
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <identifier>",
	Short: "Write a goal's description to a draft for editing",
	Long: `Write a goal's current description to a draft file. Edit it, then run
"mixer goal update <identifier> <draft>" to push the change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		goal, err := a.engine(false).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if out == "" {
			out = filepath.Join("drafts", strings.ToLower(goal.Identifier)+".md")
		}
		content := goal.Description
		if _, err := draft.Parse(content); err != nil {
			content = fmt.Sprintf("# %s\n\n%s", goal.Title, content)
		}
		if err := draft.NewStore(nil).Write(out, content); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", goal.Identifier, out)
		return nil
	},
}

var goalAnalyzeCmd = &cobra.Command{
	Use:   "analyze <identifier>",
	Short: "Suggest implementation areas and plan steps for a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		goal, err := a.engine(false).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSuggestions(cmd.OutOrStdout(), goal, engine.Analyze(goal))
		return nil
	},
}
