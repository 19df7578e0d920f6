package metrics

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [network] <metric>",
		Short: "Summarize a metric over a range",
		Long: `Fetch a metric and print its provenance plus current, minimum,
maximum, and average values for each field.

Examples:
  # A year of avalanche transactions
  chainpulse metrics show avalanche tx-count

  # Default network, explicit range
  chainpulse metrics show tvl --range 90D

  # JSON output for scripting
  chainpulse metrics show ethereum fees-paid -o json`,
		Args:         cobra.RangeArgs(1, 2),
		RunE:         runShow,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.Flags().Bool("offline", false, "Serve from the local snapshot cache without fetching")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	networkID, metricID, err := splitNetworkArgs(args)
	if err != nil {
		return err
	}
	if err := checkPair(networkID, metricID); err != nil {
		return err
	}

	offline, _ := cmd.Flags().GetBool("offline")
	runner, cleanup, err := newRunner(offline)
	if err != nil {
		return err
	}
	defer cleanup()

	rangeToken := cmd.Flag("range").Value.String()

	result, err := runner.RunSeries(context.Background(), networkID, metricID, rangeToken)
	if err != nil {
		return fmt.Errorf("fetch %s/%s failed: %w", networkID, metricID, err)
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		printSeriesJSON(cmd, result)
	case "table":
		printSeriesDetail(cmd, result)
		fmt.Fprintln(cmd.OutOrStdout())
		printFieldStats(cmd, result)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	return nil
}
