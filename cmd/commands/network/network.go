package network

import "github.com/spf13/cobra"

// NewCommand returns the "network" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Inspect supported networks",
		Long: `Inspect the built-in catalog of supported blockchain networks.

Networks, their metrics, and their history floors are compiled in;
there is nothing to configure.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())

	return cmd
}
