package cache

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/yashh-d/chainpulse/internal/snapstore"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the snapshot cache holds",
		Long: `Show the cached series with their point counts and date coverage.

Examples:
  chainpulse cache status
  chainpulse cache status -o json`,
		Args:         cobra.NoArgs,
		RunE:         runStatus,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

// statJSON mirrors SnapshotStat with lowercase keys for scripting.
type statJSON struct {
	Network string    `json:"network"`
	Metric  string    `json:"metric"`
	Points  int       `json:"points"`
	Oldest  time.Time `json:"oldest"`
	Newest  time.Time `json:"newest"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	repo, err := snapstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer repo.Close()

	stats, err := repo.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		out := make([]statJSON, len(stats))
		for i, s := range stats {
			out[i] = statJSON{Network: s.Network, Metric: s.Metric, Points: s.Points, Oldest: s.Oldest, Newest: s.Newest}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(out)
	case "table":
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Snapshot cache is empty. Run 'chainpulse cache sync' to fill it.")
			return nil
		}
		printStatsTable(cmd, stats)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	return nil
}

func printStatsTable(cmd *cobra.Command, stats []snapstore.SnapshotStat) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tMETRIC\tPOINTS\tOLDEST\tNEWEST")
	fmt.Fprintln(w, "-------\t------\t------\t------\t------")

	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.Network, s.Metric, s.Points,
			s.Oldest.UTC().Format("2006-01-02"),
			s.Newest.UTC().Format("2006-01-02"),
		)
	}

	w.Flush()
}
