package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/format"
	"github.com/yashh-d/chainpulse/internal/tui/styles"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"
)

// sparklineHeight is the fixed height for compact sparklines.
const sparklineHeight = 5

// distLabelWidth caps the category column in distribution bar rows.
const distLabelWidth = 14

// TimeSeriesChart renders a braille line chart for a metric series. Axis
// labels are derived from the series unit and bucket granularity.
func TimeSeriesChart(points []domain.Point, unit domain.Unit, bucket domain.Bucket, width, height int) string {
	if len(points) == 0 {
		return styles.MutedText.Render("no data")
	}
	if width < 20 {
		width = 20
	}
	if height < 4 {
		height = 4
	}

	chart := timeserieslinechart.New(width, height)
	chart.AxisStyle = lipgloss.NewStyle().Foreground(styles.DimGray)
	chart.LabelStyle = lipgloss.NewStyle().Foreground(styles.Gray)
	chart.XLabelFormatter = func(_ int, v float64) string {
		return format.BucketLabel(time.Unix(int64(v), 0).UTC(), bucket)
	}
	chart.YLabelFormatter = func(_ int, v float64) string {
		return format.Magnitude(v, unit)
	}
	chart.SetStyle(lipgloss.NewStyle().Foreground(styles.Blue))

	for _, p := range points {
		chart.Push(timeserieslinechart.TimePoint{Time: p.Timestamp, Value: p.Value})
	}

	first := points[0].Timestamp
	last := points[len(points)-1].Timestamp
	if !last.After(first) {
		// A single-point series still needs a non-zero time span.
		last = first.Add(24 * time.Hour)
	}
	lo, hi := minMax(pointValues(points))
	if hi == lo {
		hi = lo + 1
	}

	chart.SetTimeRange(first, last)
	chart.SetViewTimeRange(first, last)
	chart.SetYRange(lo, hi)
	chart.SetViewYRange(lo, hi)
	chart.DrawBraille()

	return chart.View()
}

// SeriesSummary renders the one-line cur/min/max recap shown under charts.
func SeriesSummary(points []domain.Point, unit domain.Unit) string {
	if len(points) == 0 {
		return ""
	}
	values := pointValues(points)
	current := values[len(values)-1]
	lo, hi := minMax(values)
	return styles.MutedText.Render(
		fmt.Sprintf("cur: %s  min: %s  max: %s",
			format.Magnitude(current, unit),
			format.Magnitude(lo, unit),
			format.Magnitude(hi, unit),
		),
	)
}

// Sparkline renders a compact single-series plot with a label header and
// a cur/min/max summary line. Used where a full axis chart does not fit.
func Sparkline(label string, data []float64, width int, unit domain.Unit) string {
	if len(data) == 0 {
		return styles.MutedText.Render(label + ": no data")
	}

	// Reserve space for Y-axis labels (number + " ┤" ≈ 9 chars).
	plotWidth := width - 9
	if plotWidth < 10 {
		plotWidth = 10
	}

	chart := asciigraph.Plot(data,
		asciigraph.Height(sparklineHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.DodgerBlue),
		asciigraph.LabelColor(asciigraph.Default),
	)

	current := data[len(data)-1]
	lo, hi := minMax(data)
	summary := styles.MutedText.Render(
		fmt.Sprintf("  cur: %s  min: %s  max: %s",
			format.Magnitude(current, unit),
			format.Magnitude(lo, unit),
			format.Magnitude(hi, unit),
		),
	)

	header := styles.Label.Render(label)
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, summary)
}

// DistributionBars renders a horizontal bar per slice, widest share first,
// colored from the chart palette.
//
//	USDT     ████████████████████████  70.00%  $700.00M
//	USDC     ██████████                29.50%  $295.00M
func DistributionBars(slices []domain.DistributionSlice, unit domain.Unit, width int) string {
	if len(slices) == 0 {
		return styles.MutedText.Render("no data")
	}

	labelWidth := 0
	for _, s := range slices {
		if w := lipgloss.Width(s.Label); w > labelWidth {
			labelWidth = w
		}
	}
	if labelWidth > distLabelWidth {
		labelWidth = distLabelWidth
	}

	// label + gap + bar + gap + "100.00%" + gap + value
	barWidth := width - labelWidth - 2 - 9 - 2 - 12
	if barWidth < 8 {
		barWidth = 8
	}

	maxPct := slices[0].Percentage
	for _, s := range slices[1:] {
		if s.Percentage > maxPct {
			maxPct = s.Percentage
		}
	}
	if maxPct <= 0 {
		maxPct = 100
	}

	rows := make([]string, 0, len(slices))
	for i, s := range slices {
		color := styles.ChartPalette[i%len(styles.ChartPalette)]
		if s.Label == "Other" {
			color = styles.Gray
		}

		cells := int(float64(barWidth) * s.Percentage / maxPct)
		if cells < 1 && s.Percentage > 0 {
			cells = 1
		}
		if cells > barWidth {
			cells = barWidth
		}
		// Pad outside the styled text so escape codes don't skew widths.
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", cells)) +
			strings.Repeat(" ", barWidth-cells)

		label := ansi.Truncate(s.Label, labelWidth, "…")
		label += strings.Repeat(" ", labelWidth-lipgloss.Width(label))

		row := fmt.Sprintf("%s  %s  %s  %s",
			styles.Value.Render(label),
			bar,
			styles.Subtitle.Render(fmt.Sprintf("%6.2f%%", s.Percentage)),
			styles.MutedText.Render(format.Magnitude(s.Value, unit)),
		)
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n")
}

// minMax returns the minimum and maximum values from a slice.
func minMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// pointValues extracts the value column from a series.
func pointValues(points []domain.Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
