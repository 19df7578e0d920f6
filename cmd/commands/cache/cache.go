package cache

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the cache parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local snapshot cache",
		Long: `Manage the local snapshot cache that backs offline mode. Synced
series live in the shared SQLite database and are read by '--offline'
commands and by the dashboard when sources are unreachable.

Examples:
  # Pull a year of every avalanche metric into the cache
  chainpulse cache sync avalanche

  # What is cached, and how fresh is it
  chainpulse cache status

  # Recent sync outcomes
  chainpulse cache history

  # Drop points older than a year
  chainpulse cache prune --older-than 365d`,
		SilenceUsage: true,
	}

	cmd.AddCommand(SyncCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(HistoryCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
