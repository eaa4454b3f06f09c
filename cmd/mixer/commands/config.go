package commands

import (
	"fmt"

	"github.com/goblinsan/mixer/pkg/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("repo", "", "GitHub repository (owner/repo)")
	configInitCmd.Flags().String("workspace", "", "Linear workspace name")
	configInitCmd.Flags().String("team", "", "Linear team key (e.g. SYS)")
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing config file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config.yaml",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	Long: `Write a starter config.yaml in the current directory (or --config).
Tokens are never written; set GITHUB_TOKEN and LINEAR_API_KEY in the
environment or a .env file instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		workspace, _ := cmd.Flags().GetString("workspace")
		team, _ := cmd.Flags().GetString("team")
		force, _ := cmd.Flags().GetBool("force")

		path := cfgFile
		if path == "" {
			path = config.FileName
		}
		if err := writeConfigTemplate(afero.NewOsFs(), path, repo, workspace, team, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func writeConfigTemplate(fs afero.Fs, path, repo, workspace, team string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if exists && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := config.Template(repo, workspace, team)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
