package metrics

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/pipeline"

	"github.com/spf13/cobra"
)

func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [network] <metric>",
		Short: "Export a metric series to CSV or JSON",
		Long: `Fetch a metric and write the bucketed series to a file. CSV gets one
column per declared field; JSON gets the same envelope 'metrics show -o
json' prints.

The default file name is derived from the network, metric, range, and
today's date. Pass '--out -' to stream to stdout instead.

Examples:
  # avalanche_tx-count_1y_20250823.csv in the current directory
  chainpulse metrics export avalanche tx-count

  # JSON to a chosen path
  chainpulse metrics export ethereum tvl -o json --out tvl.json

  # Pipe CSV into another tool
  chainpulse metrics export ethereum price --out - | head`,
		Args:         cobra.RangeArgs(1, 2),
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "csv", "Export format: csv or json")
	cmd.Flags().String("out", "", "Destination path ('-' for stdout)")
	cmd.Flags().Bool("offline", false, "Serve from the local snapshot cache without fetching")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	networkID, metricID, err := splitNetworkArgs(args)
	if err != nil {
		return err
	}
	if err := checkPair(networkID, metricID); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported export format %q (use csv or json)", format)
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

	out, _ := cmd.Flags().GetString("out")
	if out == "-" {
		return writeExport(cmd.OutOrStdout(), format, result)
	}

	if out == "" {
		out = exportFilename(result, format)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	if err := writeExport(f, format, result); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(result.Aggregated), out)
	return nil
}

// exportFilename derives a date-stamped default destination, e.g.
// avalanche_tx-count_1y_20250823.csv.
func exportFilename(result *pipeline.Result, format string) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		result.Network.ID,
		result.Metric.ID,
		strings.ToLower(result.RangeToken),
		time.Now().Format("20060102"),
		format,
	)
}

func writeExport(w io.Writer, format string, result *pipeline.Result) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSeriesJSON(result))
	}
	return writeSeriesCSV(w, result)
}

// writeSeriesCSV writes a date column plus one column per declared
// field. Buckets missing a field get an empty cell.
func writeSeriesCSV(w io.Writer, result *pipeline.Result) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(result.Metric.Fields)+1)
	header = append(header, "date")
	for _, f := range result.Metric.Fields {
		header = append(header, f.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range result.Aggregated {
		row := make([]string, 0, len(header))
		row = append(row, p.Date.UTC().Format("2006-01-02"))
		for _, f := range result.Metric.Fields {
			v, ok := p.Values[f.Name]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
