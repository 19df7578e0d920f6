package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/timerange"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/sync/errgroup"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("board setup aborted by user")

// BoardForm runs an interactive wizard that assembles a dashboard board:
// name, network, metric set, and range. Metric options are filtered to
// the chosen network. When runner is non-nil, the selection is probed
// with one pipeline run per metric before the confirm step, so missing
// credentials or an unreachable source surface here instead of as a
// grid of error cards after saving.
func BoardForm(runner *pipeline.Runner, prefill boardstore.Board) (*boardstore.Board, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	board := prefill
	board.Metrics = append([]string(nil), prefill.Metrics...)
	if board.Range == "" {
		board.Range = timerange.DefaultToken
	}

	// --- Form 1: Name + Network ---

	networkOpts, networkLabels := buildNetworkOptions(networks.List(), board.Network)

	nameField := huh.NewInput().
		Title("Board name").
		Value(&board.Name).
		Validate(func(value string) error {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				return errors.New("name is required")
			}
			return util.ValidateSlug(trimmed)
		})

	networkField := huh.NewSelect[string]().
		Title("Network").
		Options(networkOpts...).
		Value(&board.Network).
		Height(selectHeight(len(networkOpts), 10))

	if err := runForm(accessible,
		huh.NewGroup(nameField),
		huh.NewGroup(networkField),
	); err != nil {
		return nil, err
	}

	// Drop prefilled metrics the chosen network cannot chart.
	board.Metrics = supportedMetrics(board.Network, board.Metrics)

	// --- Form 2: Metrics + Range + Confirm ---

	var metricLabels map[string]string
	metricOptsFunc := func() []huh.Option[string] {
		options, labels := buildMetricOptions(networks.MetricsFor(board.Network))
		metricLabels = labels
		return options
	}
	_ = metricOptsFunc() // prime metricLabels for the summary

	metricField := huh.NewMultiSelect[string]().
		Title("Metrics").
		OptionsFunc(metricOptsFunc, &board.Network).
		Value(&board.Metrics).
		Height(12).
		Validate(func(selected []string) error {
			if len(selected) == 0 {
				return errors.New("pick at least one metric")
			}
			return nil
		})

	rangeField := huh.NewSelect[string]().
		Title("Range").
		Options(huh.NewOptions(timerange.Tokens()...)...).
		Value(&board.Range)

	if err := runForm(accessible,
		huh.NewGroup(metricField),
		huh.NewGroup(rangeField),
	); err != nil {
		return nil, err
	}

	// --- Probe the selection before committing ---

	var probes []string
	if runner != nil {
		probeErr := spinner.New().
			Title("Probing selected metrics...").
			Accessible(accessible).
			Output(os.Stderr).
			ActionWithErr(func(ctx context.Context) error {
				var err error
				probes, err = probeSelection(ctx, runner, board)
				return err
			}).
			Run()
		if probeErr != nil {
			if errors.Is(probeErr, huh.ErrUserAborted) || errors.Is(probeErr, context.Canceled) {
				return nil, ErrAborted
			}
			return nil, probeErr
		}
	}

	// --- Form 3: Summary + Confirm ---

	confirm := false
	summaryNote := huh.NewNote().
		Title("Summary").
		Description(buildBoardSummary(board, networkLabels, metricLabels, probes))

	confirmField := huh.NewConfirm().
		Title("Save this board?").
		Value(&confirm)

	if err := runForm(accessible,
		huh.NewGroup(summaryNote, confirmField),
	); err != nil {
		return nil, err
	}

	if !confirm {
		return nil, ErrAborted
	}

	board.Name = strings.TrimSpace(board.Name)
	return &board, nil
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// probeSelection runs one pipeline fetch per selected metric concurrently
// and reports a point count + source line per metric, in selection order.
func probeSelection(ctx context.Context, runner *pipeline.Runner, board boardstore.Board) ([]string, error) {
	results := make([]string, len(board.Metrics))
	g, ctx := errgroup.WithContext(ctx)

	for i, metricID := range board.Metrics {
		g.Go(func() error {
			result, err := runner.RunSeries(ctx, board.Network, metricID, board.Range)
			if err != nil {
				return fmt.Errorf("failed to probe %s: %w", metricID, err)
			}
			results[i] = fmt.Sprintf("%s: %d points via %s", metricID, len(result.Series.Points), result.SourceName)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// supportedMetrics filters metric IDs to those the network can chart.
func supportedMetrics(networkID string, ids []string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if networks.Supports(networkID, id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// --- Option builders ---

func buildNetworkOptions(list []domain.Network, selected string) ([]huh.Option[string], map[string]string) {
	options := make([]huh.Option[string], 0, len(list))
	labels := make(map[string]string, len(list))

	for _, network := range list {
		label := networkOptionLabel(network)
		options = append(options, huh.NewOption(label, network.ID))
		labels[network.ID] = label
	}

	if selected != "" {
		options = ensureOption(options, labels, selected, "Custom: "+selected)
	}

	return options, labels
}

func buildMetricOptions(list []domain.Metric) ([]huh.Option[string], map[string]string) {
	options := make([]huh.Option[string], 0, len(list))
	labels := make(map[string]string, len(list))

	for _, metric := range list {
		label := metricOptionLabel(metric)
		options = append(options, huh.NewOption(label, metric.ID))
		labels[metric.ID] = label
	}

	return options, labels
}

func ensureOption(options []huh.Option[string], labels map[string]string, value string, label string) []huh.Option[string] {
	if value == "" {
		return options
	}
	if _, ok := labels[value]; ok {
		return options
	}
	options = append(options, huh.NewOption(label, value))
	labels[value] = label
	return options
}

// --- Labels & summary ---

func networkOptionLabel(network domain.Network) string {
	if network.Symbol == "" {
		return network.Name
	}
	return network.Name + " (" + network.Symbol + ")"
}

func metricOptionLabel(metric domain.Metric) string {
	if metric.Description == "" {
		return metric.Name
	}
	return metric.Name + " - " + metric.Description
}

func buildBoardSummary(board boardstore.Board, networkLabels, metricLabels map[string]string, probes []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", strings.TrimSpace(board.Name))
	fmt.Fprintf(&b, "Network: %s\n", labelFor(networkLabels, board.Network, "Not selected"))
	fmt.Fprintf(&b, "Metrics: %s\n", formatList(board.Metrics, metricLabels, "None"))
	fmt.Fprintf(&b, "Range: %s\n", board.Range)

	if len(probes) > 0 {
		fmt.Fprintf(&b, "Probe: %s\n", strings.Join(probes, "; "))
	}

	return strings.TrimSpace(b.String())
}

func labelFor(labels map[string]string, value string, emptyLabel string) string {
	if value == "" {
		return emptyLabel
	}
	if labels != nil {
		if label, ok := labels[value]; ok {
			return label
		}
	}
	return value
}

func formatList(values []string, labels map[string]string, emptyLabel string) string {
	if len(values) == 0 {
		return emptyLabel
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if label, ok := labels[v]; ok {
			parts = append(parts, label)
		} else {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func selectHeight(optionCount, max int) int {
	if optionCount < max {
		return optionCount
	}
	return max
}
