package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/goblinsan/mixer/pkg/config"
	"github.com/goblinsan/mixer/pkg/draft"
	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("draft", "d", "", "also check that this draft file parses")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, environment and drafts without calling any API",
	Long: `Validate config.yaml and the GitHub and Linear tokens in the environment.
With --draft, also check that the draft has a "# " heading to use as title.
Every problem is reported at once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		draftPath, _ := cmd.Flags().GetString("draft")
		fs := afero.NewOsFs()

		problems := validateProject(fs, config.Options{File: cfgFile, Fs: fs}, viper.GetString("token"), draftPath)
		if len(problems) > 0 {
			fmt.Fprintf(os.Stderr, "Validation failed with %d error(s):\n", len(problems))
			for i, p := range problems {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, p)
			}
			os.Exit(1)
		}

		fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render("Configuration is valid."))
		return nil
	},
}

// validateProject returns every configuration and draft problem found.
func validateProject(fs afero.Fs, opts config.Options, token, draftPath string) []string {
	var problems []string

	cfg, err := config.Load(opts)
	if err == nil {
		if token != "" {
			cfg.GitHub.Token = token
		}
		err = cfg.Validate()
	}
	var cerr *errs.ConfigurationError
	switch {
	case errors.As(err, &cerr):
		problems = append(problems, cerr.Problems...)
	case err != nil:
		problems = append(problems, err.Error())
	}

	if draftPath != "" {
		if _, err := draft.NewStore(fs).Read(draftPath); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return problems
}
