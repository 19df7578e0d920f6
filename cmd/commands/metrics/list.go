package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [network]",
		Short: "List available metrics",
		Long: `List the metrics in the catalog. With a network argument, only the
metrics that network tracks are shown.

Examples:
  # Every metric
  chainpulse metrics list

  # Metrics ethereum tracks
  chainpulse metrics list ethereum

  # JSON output for scripting
  chainpulse metrics list -o json`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	var list []domain.Metric
	if len(args) == 1 {
		networkID := util.NormalizeKey(args[0])
		if _, err := networks.Lookup(networkID); err != nil {
			return fmt.Errorf("unknown network %q (known: %s)", args[0], strings.Join(networkIDs(), ", "))
		}
		list = networks.MetricsFor(networkID)
	} else {
		list = networks.Metrics()
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(list)
	case "table":
		printMetricsTable(cmd, list)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	return nil
}

func printMetricsTable(cmd *cobra.Command, list []domain.Metric) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tUNIT\tAGG\tSOURCE\tFALLBACK")
	fmt.Fprintln(w, "--\t----\t----\t---\t------\t--------")

	for _, m := range list {
		primary := m.PrimaryField()
		fallback := m.Fallback
		if fallback == "" {
			fallback = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, primary.Unit, primary.Kind, m.Source, fallback)
	}

	w.Flush()
}
