package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(linkCmd, cancelCmd)
	linkCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
	cancelCmd.Flags().StringP("reason", "r", "", "reason recorded in the cancel comment")
	cancelCmd.Flags().Bool("dry-run", false, "preview what would be written without making changes")
}

var linkCmd = &cobra.Command{
	Use:   "link <child> <parent>",
	Short: "Make one ticket the parent of another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).Link(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <identifier>",
	Short: "Comment on a goal or plan and move it to Canceled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		a, err := newApp(linearService)
		if err != nil {
			return err
		}
		report, err := a.engine(dryRun).CancelTicket(cmd.Context(), args[0], reason)
		return showReport(cmd, report, err)
	},
}
