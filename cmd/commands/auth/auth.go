package auth

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API keys for data services",
		Long: `Manage API keys for data services.

Use this command group to store, inspect, and remove the keys chainpulse
uses to reach its data sources. Keys are kept in the OS keychain, never
in config files.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(LogoutCommand())

	return cmd
}
