package metrics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/tui/components"

	"github.com/spf13/cobra"
)

func DistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dist [network]",
		Short: "Show a categorical breakdown of a network",
		Long: `Fetch a distribution -- how a total splits across categories -- and
print it as a table, bar chart, JSON, or CSV. Small slices are merged
into an "Other" bucket.

Examples:
  # Stablecoin share on the default network
  chainpulse metrics dist --by stablecoin

  # TVL by protocol, drawn as bars
  chainpulse metrics dist avalanche --by protocol -o bars

  # CSV to stdout for piping
  chainpulse metrics dist ethereum --by stablecoin -o csv`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runDist,
		SilenceUsage: true,
	}

	cmd.Flags().String("by", "stablecoin", "Breakdown dimension: "+strings.Join(pipeline.Breakdowns(), " or "))
	cmd.Flags().StringP("output", "o", "table", "Output format: table, bars, json, or csv")

	return cmd
}

func runDist(cmd *cobra.Command, args []string) error {
	networkID, err := resolveNetwork(args)
	if err != nil {
		return err
	}

	by, _ := cmd.Flags().GetString("by")
	if !containsString(pipeline.Breakdowns(), by) {
		return fmt.Errorf("unknown breakdown %q (use %s)", by, strings.Join(pipeline.Breakdowns(), " or "))
	}

	runner, cleanup, err := newRunner(false)
	if err != nil {
		return err
	}
	defer cleanup()

	rangeToken := cmd.Flag("range").Value.String()

	result, err := runner.RunDistribution(context.Background(), networkID, by, rangeToken)
	if err != nil {
		return fmt.Errorf("fetch %s by %s failed: %w", networkID, by, err)
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		printDistJSON(cmd, result)
	case "csv":
		return writeDistCSV(cmd.OutOrStdout(), result)
	case "bars":
		fmt.Fprintf(cmd.OutOrStdout(), "%s by %s (%s)\n\n", result.Network.Name, result.By, result.RangeToken)
		fmt.Fprintln(cmd.OutOrStdout(), components.DistributionBars(result.Slices, domain.UnitCurrency, defaultChartWidth()))
	case "table":
		printDistTable(cmd, result)
	default:
		return fmt.Errorf("unsupported output format %q (use table, bars, json, or csv)", output)
	}

	return nil
}

// writeDistCSV writes label/value/percentage rows. Labels are sanitized
// against CSV formula injection since they originate from external APIs.
func writeDistCSV(w io.Writer, result *pipeline.DistributionResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"label", "value", "percentage"}); err != nil {
		return err
	}

	for _, s := range result.Slices {
		if err := cw.Write([]string{
			sanitizeCSVField(s.Label),
			strconv.FormatFloat(s.Value, 'f', -1, 64),
			strconv.FormatFloat(s.Percentage, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// sanitizeCSVField neutralizes spreadsheet formula prefixes.
func sanitizeCSVField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
