package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which services have stored API keys",
		Long: `Show which data services have stored API keys.

Example:
  chainpulse auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()

			// Use TUI in interactive terminal.
			if term.IsTerminal(int(os.Stdout.Fd())) {
				if err := tui.RunAuthStatus(store); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			// Non-interactive fallback.
			for _, service := range auth.KnownServices {
				_, err := store.GetToken(service)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: key stored\n", service)
				case errors.Is(err, auth.ErrTokenNotFound):
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no key\n", service)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: error (%v)\n", service, err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
