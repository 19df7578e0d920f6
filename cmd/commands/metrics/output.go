package metrics

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/format"
	"github.com/yashh-d/chainpulse/internal/pipeline"

	"github.com/spf13/cobra"
)

// seriesJSON is the stable envelope for machine-readable series output.
// Points carry every declared field, not just the primary one.
type seriesJSON struct {
	Network  string                   `json:"network"`
	Metric   string                   `json:"metric"`
	Range    string                   `json:"range"`
	Window   domain.RangeWindow       `json:"window"`
	Source   string                   `json:"source"`
	Fallback bool                     `json:"fallback"`
	Points   []domain.AggregatedPoint `json:"points"`
}

// distJSON is the envelope for machine-readable distribution output.
type distJSON struct {
	Network string                     `json:"network"`
	By      string                     `json:"by"`
	Range   string                     `json:"range"`
	Window  domain.RangeWindow         `json:"window"`
	Source  string                     `json:"source"`
	Slices  []domain.DistributionSlice `json:"slices"`
}

func newSeriesJSON(result *pipeline.Result) seriesJSON {
	return seriesJSON{
		Network:  result.Network.ID,
		Metric:   result.Metric.ID,
		Range:    result.RangeToken,
		Window:   result.Window,
		Source:   result.SourceName,
		Fallback: result.Fallback,
		Points:   result.Aggregated,
	}
}

// printSeriesJSON encodes a series result as indented JSON to stdout.
func printSeriesJSON(cmd *cobra.Command, result *pipeline.Result) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(newSeriesJSON(result))
}

// printSeriesDetail prints a vertical key-value block describing a run.
func printSeriesDetail(cmd *cobra.Command, result *pipeline.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "  Network:\t%s (%s)\n", result.Network.Name, result.Network.Symbol)
	fmt.Fprintf(w, "  Metric:\t%s (%s)\n", result.Metric.Name, result.Metric.ID)
	fmt.Fprintf(w, "  Range:\t%s\n", result.RangeToken)

	source := result.SourceName
	if result.Fallback {
		source += " (fallback)"
	}
	fmt.Fprintf(w, "  Source:\t%s\n", source)

	fmt.Fprintf(w, "  Points:\t%d\n", len(result.Aggregated))
	fmt.Fprintf(w, "  Fetched:\t%s\n", result.Duration.Round(time.Millisecond))

	w.Flush()
}

// printFieldStats prints a per-field summary table over the bucketed
// points, in the metric's declared field order.
func printFieldStats(cmd *cobra.Command, result *pipeline.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "FIELD\tCUR\tMIN\tMAX\tAVG")
	fmt.Fprintln(w, "-----\t---\t---\t---\t---")

	for _, field := range result.Metric.Fields {
		values := fieldValues(result.Aggregated, field.Name)
		if len(values) == 0 {
			continue
		}

		cur, min, max, avg := computeStats(values)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			field.Name,
			format.Magnitude(cur, field.Unit),
			format.Magnitude(min, field.Unit),
			format.Magnitude(max, field.Unit),
			format.Magnitude(avg, field.Unit),
		)
	}

	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\nWindow: %s to %s (%s buckets)\n",
		result.Window.Start.UTC().Format("2006-01-02"),
		result.Window.End.UTC().Format("2006-01-02"),
		result.Window.Bucket,
	)
}

// printDistJSON encodes a distribution result as indented JSON.
func printDistJSON(cmd *cobra.Command, result *pipeline.DistributionResult) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(distJSON{
		Network: result.Network.ID,
		By:      result.By,
		Range:   result.RangeToken,
		Window:  result.Window,
		Source:  result.SourceName,
		Slices:  result.Slices,
	})
}

// printDistTable prints distribution slices as a LABEL/VALUE/SHARE table.
func printDistTable(cmd *cobra.Command, result *pipeline.DistributionResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "LABEL\tVALUE\tSHARE")
	fmt.Fprintln(w, "-----\t-----\t-----")

	for _, s := range result.Slices {
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\n",
			s.Label,
			format.Magnitude(s.Value, domain.UnitCurrency),
			s.Percentage,
		)
	}

	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d slices from %s\n", len(result.Slices), result.SourceName)
}

// fieldValues extracts one field's values from bucketed points, keeping
// bucket order and skipping buckets where the field is absent.
func fieldValues(points []domain.AggregatedPoint, field string) []float64 {
	var out []float64
	for _, p := range points {
		if v, ok := p.Values[field]; ok {
			out = append(out, v)
		}
	}
	return out
}

// computeStats returns cur (last), min, max, avg for a slice of values.
func computeStats(values []float64) (cur, min, max, avg float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	cur = values[len(values)-1]
	min = values[0]
	max = values[0]
	sum := 0.0

	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	avg = sum / float64(len(values))
	return cur, min, max, avg
}
