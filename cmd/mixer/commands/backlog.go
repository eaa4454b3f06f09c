package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backlogCmd)
	backlogCmd.AddCommand(backlogListCmd, backlogShowCmd, backlogCloseCmd)
	backlogCloseCmd.Flags().StringP("comment", "c", "", "comment to leave before closing")
	backlogCloseCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
}

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Inspect and close GitHub backlog issues",
}

var backlogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open backlog issues (pull requests excluded)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(githubService)
		if err != nil {
			return err
		}
		items, err := a.engine(false).ListBacklog(cmd.Context())
		if err != nil {
			return err
		}
		printBacklog(cmd.OutOrStdout(), items)
		return nil
	},
}

var backlogShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one backlog issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIssueNumber(args[0])
		if err != nil {
			return err
		}
		a, err := newApp(githubService)
		if err != nil {
			return err
		}
		item, err := a.engine(false).LoadBacklogItem(cmd.Context(), n)
		if err != nil {
			return err
		}
		printBacklogItem(cmd.OutOrStdout(), item)
		return nil
	},
}

var backlogCloseCmd = &cobra.Command{
	Use:   "close <number>...",
	Short: "Close backlog issues, optionally commenting first",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, _ := cmd.Flags().GetString("comment")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		numbers := make([]int, 0, len(args))
		for _, arg := range args {
			n, err := parseIssueNumber(arg)
			if err != nil {
				return err
			}
			numbers = append(numbers, n)
		}
		a, err := newApp(githubService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).CloseBacklog(cmd.Context(), numbers, comment)
		return showReport(cmd, report, err)
	},
}

// parseIssueNumber accepts "12" or "#12".
func parseIssueNumber(s string) (int, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q", s)
	}
	return n, nil
}
