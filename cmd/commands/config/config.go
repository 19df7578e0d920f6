package config

import (
	"github.com/yashh-d/chainpulse/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage chainpulse configuration",
		Long: "View and modify persistent chainpulse settings.\n\n" +
			"Configuration is stored at ~/.config/chainpulse/config.json.\n" +
			"API keys are not configuration; they live in the OS keychain\n" +
			"(see 'chainpulse auth').\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
