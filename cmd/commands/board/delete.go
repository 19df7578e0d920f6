package board

import (
	"errors"
	"fmt"
	"os"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/tui"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a saved board",
		Long: `Delete a saved board. Interactively this opens a picker with a
confirmation step; pass a name and --yes to skip both.

Examples:
  # Pick from a list, then confirm
  chainpulse board delete

  # Confirm a specific board
  chainpulse board delete eth-overview

  # No prompts, for scripts
  chainpulse board delete eth-overview --yes`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runDelete,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = util.NormalizeKey(args[0])
	}

	repo, err := boardstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open board store: %w", err)
	}
	defer repo.Close()

	yes, _ := cmd.Flags().GetBool("yes")
	if yes {
		if name == "" {
			return fmt.Errorf("a board name is required with --yes")
		}
		board, err := repo.Get(name)
		if err != nil {
			return fmt.Errorf("failed to read board %q: %w", name, err)
		}
		if board == nil {
			return fmt.Errorf("board %q not found", name)
		}
		if err := repo.Delete(name); err != nil {
			return fmt.Errorf("failed to delete board %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted board %q\n", name)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no terminal for the confirmation prompt: pass --yes to skip it")
	}

	board, err := tui.BoardDeleteForm(repo, name)
	if err != nil {
		if errors.Is(err, tui.ErrDeleteAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return err
	}

	if err := repo.Delete(board.Name); err != nil {
		return fmt.Errorf("failed to delete board %q: %w", board.Name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted board %q\n", board.Name)
	return nil
}
