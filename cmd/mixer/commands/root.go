package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	assume  bool
	logger  = logging.Discard()

	rootCmd = &cobra.Command{
		Use:   "mixer",
		Short: "Turn GitHub backlog issues into Linear goals and plans",
		Long: `mixer groups GitHub issues into goals tracked in Linear, breaks goals
into plans, and moves both through Draft, Todo, In Progress and Done.
It can also run as an MCP server so agents can read the same tickets.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("token", "", "GitHub personal access token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every API call")
	rootCmd.PersistentFlags().BoolVarP(&assume, "yes", "y", false, "answer yes to every confirmation")

	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func initLogger() {
	logger = logging.New(os.Stderr, verbose)
}
