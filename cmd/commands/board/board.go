package board

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the board parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage saved dashboard boards",
		Long: `Save, list, and delete named dashboard layouts. A board pins a
network, a metric set, and a range so 'chainpulse dash --board <name>'
restores the same view later.

Examples:
  # Walk through the setup form and save the result
  chainpulse board save

  # Save without the form
  chainpulse board save eth-overview --network ethereum --metrics tvl,tx-count --range 6M

  # Open a saved board
  chainpulse dash --board eth-overview`,
		SilenceUsage: true,
	}

	cmd.AddCommand(SaveCommand())
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(DeleteCommand())

	return cmd
}
