package metrics

import (
	"context"
	"fmt"
	"os"

	"github.com/yashh-d/chainpulse/internal/tui/components"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func ChartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [network] <metric>",
		Short: "Render a metric as a terminal chart",
		Long: `Fetch a metric and draw it as a braille line chart, sized to the
terminal unless --width and --height say otherwise.

Examples:
  # A year of TVL on the default network
  chainpulse metrics chart tvl

  # Fixed size, useful when piping
  chainpulse metrics chart avalanche tx-count --width 100 --height 20

  # Chart the local cache without fetching
  chainpulse metrics chart ethereum price --offline`,
		Args:         cobra.RangeArgs(1, 2),
		RunE:         runChart,
		SilenceUsage: true,
	}

	cmd.Flags().Int("width", 0, "Chart width in columns (0 fits the terminal)")
	cmd.Flags().Int("height", 16, "Chart height in rows")
	cmd.Flags().Bool("offline", false, "Serve from the local snapshot cache without fetching")

	return cmd
}

func runChart(cmd *cobra.Command, args []string) error {
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

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = defaultChartWidth()
	}
	height, _ := cmd.Flags().GetInt("height")

	primary := result.Metric.PrimaryField()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s - %s (%s)\n\n", result.Network.Name, result.Metric.Name, result.RangeToken)
	fmt.Fprintln(out, components.TimeSeriesChart(result.Series.Points, primary.Unit, result.Window.Bucket, width, height))
	fmt.Fprintln(out, components.SeriesSummary(result.Series.Points, primary.Unit))

	source := result.SourceName
	if result.Fallback {
		source += " (fallback)"
	}
	fmt.Fprintf(out, "Source: %s\n", source)

	return nil
}

// defaultChartWidth fits the chart to the terminal with a small margin,
// falling back to 80 columns when stdout is not a terminal.
func defaultChartWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	if w > 122 {
		w = 122
	}
	return w - 2
}
