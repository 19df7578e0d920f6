package board

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/yashh-d/chainpulse/internal/boardstore"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved boards",
		Long: `List saved boards with their network, metric set, and range.

Examples:
  chainpulse board list
  chainpulse board list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	repo, err := boardstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open board store: %w", err)
	}
	defer repo.Close()

	boards, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list boards: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(boards)
	case "table":
		if len(boards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved boards. Create one with 'chainpulse board save'.")
			return nil
		}
		printBoardsTable(cmd, boards)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	return nil
}

func printBoardsTable(cmd *cobra.Command, boards []boardstore.Board) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "NAME\tNETWORK\tMETRICS\tRANGE\tUPDATED")
	fmt.Fprintln(w, "----\t-------\t-------\t-----\t-------")

	for _, b := range boards {
		rangeToken := b.Range
		if rangeToken == "" {
			rangeToken = "-"
		}

		updated := "-"
		if !b.UpdatedAt.IsZero() {
			updated = b.UpdatedAt.UTC().Format("2006-01-02 15:04")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.Name, b.Network, strings.Join(b.Metrics, ","), rangeToken, updated)
	}

	w.Flush()
}
