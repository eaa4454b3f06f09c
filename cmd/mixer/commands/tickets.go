package commands

import (
	"errors"
	"fmt"

	"github.com/goblinsan/mixer/pkg/draft"
	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/spf13/cobra"
)

// newListCmd lists tickets carrying label, optionally in one status.
func newListCmd(label, plural string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s by status", plural),
		Long: fmt.Sprintf(`List %s in Linear. Without --status, lists draft, todo, doing and done
%s. Status accepts draft, todo, doing, done, closed or a Linear state name.`, plural, plural),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			a, err := newApp(linearService)
			if err != nil {
				return err
			}
			tickets, err := a.engine(false).ListTickets(cmd.Context(), label, status)
			if err != nil {
				return err
			}
			heading := plural
			if status != "" {
				heading = fmt.Sprintf("%s in %s", plural, types.MapStatus(status))
			}
			printTickets(cmd.OutOrStdout(), heading, tickets)
			return nil
		},
	}
	cmd.Flags().StringP("status", "s", "", "only list tickets in this status")
	return cmd
}

// newShowCmd prints one ticket with its parent and children.
func newShowCmd(noun string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <identifier>",
		Short: fmt.Sprintf("Show a %s with its parent and children", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descOnly, _ := cmd.Flags().GetBool("description-only")
			a, err := newApp(linearService)
			if err != nil {
				return err
			}
			t, err := a.engine(false).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if descOnly {
				fmt.Fprintln(cmd.OutOrStdout(), t.Description)
				return nil
			}
			printTicket(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().Bool("description-only", false, "print only the description")
	return cmd
}

// consumeDraft removes a draft after its ticket was written.
func consumeDraft(cmd *cobra.Command, store *draft.Store, d draft.Draft) {
	if keep, _ := cmd.Flags().GetBool("keep-draft"); keep {
		return
	}
	if err := store.Consume(d); err != nil {
		logger.Warn("could not remove draft", "path", d.Path, "error", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Removed draft "+d.Path))
}

// showReport prints whatever an operation got done before returning its
// error. A declined confirmation prints nothing.
func showReport(cmd *cobra.Command, report *engine.Report, err error) error {
	if report != nil && !errors.Is(err, engine.ErrCancelled) {
		printReport(cmd.OutOrStdout(), report)
	}
	return err
}
