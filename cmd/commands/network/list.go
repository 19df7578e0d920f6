package network

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/yashh-d/chainpulse/internal/networks"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supported networks",
		Long: `List the supported networks with their symbols, history floors, and
available metrics.

Examples:
  chainpulse network list
  chainpulse network list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	list := networks.List()

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSYMBOL\tSINCE\tMETRICS")
	fmt.Fprintln(w, "--\t----\t------\t-----\t-------")

	for _, n := range list {
		ids := make([]string, 0, 8)
		for _, m := range networks.MetricsFor(n.ID) {
			ids = append(ids, m.ID)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.Name,
			n.Symbol,
			n.Floor.Format("2006-01"),
			strings.Join(ids, ", "),
		)
	}

	w.Flush()
	return nil
}
