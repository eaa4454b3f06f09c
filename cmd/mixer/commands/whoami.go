package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check the GitHub and Linear connections",
	Long: `Display the authenticated GitHub user, a summary of the configured
repository and the Linear viewer. Useful to confirm tokens before running
any command that writes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(linearService | githubService)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		user, err := a.backlog.GetAuthenticatedUser(ctx)
		if err != nil {
			return fmt.Errorf("failed to get authenticated user: %w", err)
		}
		fmt.Fprintln(out, headingStyle.Render("GitHub"))
		fmt.Fprintf(out, "  Logged in as: %s\n", user.GetLogin())
		if user.GetName() != "" {
			fmt.Fprintf(out, "  Name: %s\n", user.GetName())
		}

		repo, err := a.backlog.RepoInfo(ctx)
		if err != nil {
			return fmt.Errorf("failed to read repository: %w", err)
		}
		fmt.Fprintf(out, "  Repository: %s (%s)\n", a.backlog.Repo(), repo.URL)
		if repo.Description != "" {
			fmt.Fprintf(out, "  Description: %s\n", repo.Description)
		}
		fmt.Fprintf(out, "  Default branch: %s\n", repo.DefaultBranch)
		fmt.Fprintf(out, "  Open issues: %s\n", humanize.Comma(int64(repo.OpenIssues)))

		viewer, err := a.tickets.Viewer(ctx)
		if err != nil {
			return fmt.Errorf("failed to get Linear viewer: %w", err)
		}
		fmt.Fprintln(out, headingStyle.Render("Linear"))
		fmt.Fprintf(out, "  Logged in as: %s\n", viewer.Name)
		if viewer.Email != "" {
			fmt.Fprintf(out, "  Email: %s\n", viewer.Email)
		}
		fmt.Fprintf(out, "  Workspace: %s, team %s\n", a.cfg.Linear.Workspace, a.cfg.Linear.TeamID)
		return nil
	},
}
