package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yashh-d/chainpulse/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <service>",
		Short: "Remove a stored API key",
		Long: `Remove a service's API key from the local keychain.

Example:
  chainpulse auth logout coingecko`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := auth.NormalizeService(args[0])
			if !auth.IsKnownService(service) {
				return fmt.Errorf("unknown service %q (known: %s)",
					args[0], strings.Join(auth.KnownServices, ", "))
			}

			store := auth.DefaultStore()
			err := store.DeleteToken(service)
			if errors.Is(err, auth.ErrTokenNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No key stored for %s.\n", service)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed key for service %s\n", service)
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
