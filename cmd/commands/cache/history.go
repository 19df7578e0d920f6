package cache

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/yashh-d/chainpulse/internal/snapstore"

	"github.com/spf13/cobra"
)

func HistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		Long: `List recent sync runs with their outcome, source, and row counts.

Examples:
  chainpulse cache history
  chainpulse cache history --limit 50
  chainpulse cache history -o json`,
		Args:         cobra.NoArgs,
		RunE:         runHistory,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of runs to display")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

// runJSON mirrors SyncRun with lowercase keys for scripting.
type runJSON struct {
	ID         string        `json:"id"`
	Network    string        `json:"network"`
	Metric     string        `json:"metric"`
	RangeToken string        `json:"range"`
	Source     string        `json:"source"`
	Rows       int           `json:"rows"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	StartedAt  time.Time     `json:"started_at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	repo, err := snapstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer repo.Close()

	runs, err := repo.RecentSyncs(limit)
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		out := make([]runJSON, len(runs))
		for i, r := range runs {
			out[i] = runJSON{
				ID: r.ID, Network: r.Network, Metric: r.Metric, RangeToken: r.RangeToken,
				Source: r.Source, Rows: r.Rows, Status: r.Status, Error: r.ErrorMessage,
				Duration: r.Duration, StartedAt: r.StartedAt,
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(out)
	case "table":
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sync runs recorded.")
			return nil
		}
		printRunsTable(cmd, runs)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	return nil
}

func printRunsTable(cmd *cobra.Command, runs []snapstore.SyncRun) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "TIME\tNETWORK\tMETRIC\tRANGE\tSOURCE\tROWS\tSTATUS\tDURATION")
	fmt.Fprintln(w, "----\t-------\t------\t-----\t------\t----\t------\t--------")

	for _, r := range runs {
		status := r.Status
		if r.Status == snapstore.StatusError && r.ErrorMessage != "" {
			status = fmt.Sprintf("%s (%s)", r.Status, r.ErrorMessage)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Network,
			r.Metric,
			r.RangeToken,
			r.Source,
			r.Rows,
			status,
			formatDuration(r.Duration),
		)
	}

	w.Flush()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}
