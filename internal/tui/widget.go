package tui

import (
	"context"
	"fmt"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/tui/components"
	"github.com/yashh-d/chainpulse/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// dashChartHeight is the braille chart height inside a widget card.
const dashChartHeight = 8

// --- Messages ---

// seriesLoadedMsg carries a completed pipeline run back to the widget
// that requested it.
type seriesLoadedMsg struct {
	widgetID   int
	generation int
	result     *pipeline.Result
}

// seriesErrorMsg carries a failed pipeline run back to the widget that
// requested it.
type seriesErrorMsg struct {
	widgetID   int
	generation int
	err        error
}

// --- Widget states ---

type widgetState int

const (
	widgetIdle widgetState = iota
	widgetLoading
	widgetSuccess
	widgetError
)

// --- Widget ---

// widget is the state machine for one metric card on the dashboard:
// Idle -> Loading -> {Success | Error}, where Success with zero points
// renders an explicit empty state. Any range change re-enters Loading
// from either terminal state.
//
// The widget is a value type: methods return a new copy plus any
// tea.Cmd to execute, so it can be embedded in the dashboard model the
// same way poller helpers are.
//
// Every reload bumps the widget's generation and tags the fetch command
// with it. Responses carrying a stale generation are dropped, so the
// latest selection always wins regardless of the order in which
// in-flight fetches resolve.
type widget struct {
	id     int
	runner *pipeline.Runner

	network    domain.Network
	metric     domain.Metric
	rangeToken string

	state      widgetState
	generation int
	result     *pipeline.Result
	err        error
}

// newWidget creates an idle widget for one metric of one network.
func newWidget(id int, runner *pipeline.Runner, network domain.Network, metric domain.Metric, rangeToken string) widget {
	return widget{
		id:         id,
		runner:     runner,
		network:    network,
		metric:     metric,
		rangeToken: rangeToken,
	}
}

// WithRange returns the widget retargeted to a new range token. The
// caller follows up with Reload to fetch it.
func (w widget) WithRange(token string) widget {
	w.rangeToken = token
	return w
}

// Reload transitions to Loading, bumps the generation, and returns the
// fetch command for the current selection.
func (w widget) Reload() (widget, tea.Cmd) {
	w.generation++
	w.state = widgetLoading
	w.result = nil
	w.err = nil
	return w, w.load()
}

// load returns a tea.Cmd that runs the pipeline for this widget's
// selection, tagged with the current generation.
func (w widget) load() tea.Cmd {
	id, gen := w.id, w.generation
	runner := w.runner
	network, metric, token := w.network.ID, w.metric.ID, w.rangeToken
	return func() tea.Msg {
		result, err := runner.RunSeries(context.Background(), network, metric, token)
		if err != nil {
			return seriesErrorMsg{widgetID: id, generation: gen, err: err}
		}
		return seriesLoadedMsg{widgetID: id, generation: gen, result: result}
	}
}

// HandleLoaded applies a loaded message. It reports false when the
// message belongs to another widget or to a superseded generation, in
// which case the widget is returned unchanged.
func (w widget) HandleLoaded(msg seriesLoadedMsg) (widget, bool) {
	if msg.widgetID != w.id || msg.generation != w.generation {
		return w, false
	}
	w.state = widgetSuccess
	w.result = msg.result
	w.err = nil
	return w, true
}

// HandleError applies an error message, with the same staleness rules
// as HandleLoaded.
func (w widget) HandleError(msg seriesErrorMsg) (widget, bool) {
	if msg.widgetID != w.id || msg.generation != w.generation {
		return w, false
	}
	w.state = widgetError
	w.err = msg.err
	w.result = nil
	return w, true
}

// Loading reports whether a fetch is in flight.
func (w widget) Loading() bool {
	return w.state == widgetLoading
}

// empty reports whether the widget succeeded with zero points.
func (w widget) empty() bool {
	return w.state == widgetSuccess && (w.result == nil || len(w.result.Series.Points) == 0)
}

// --- Rendering ---

// View renders the widget as a card. The spin string is the shared
// spinner frame rendered by the dashboard.
func (w widget) View(cardWidth int, active bool, spin string) string {
	inner := cardWidth - 4 // card padding
	if inner < 24 {
		inner = 24
	}

	title := styles.Title.Render(w.metric.Name) + "  " + styles.Subtitle.Render(w.rangeToken)
	body := w.renderBody(inner, spin)

	card := styles.Card
	if active {
		card = styles.CardActive
	}
	return card.Width(cardWidth).Render(title + "\n\n" + body)
}

func (w widget) renderBody(width int, spin string) string {
	boxHeight := dashChartHeight + 2

	switch w.state {
	case widgetLoading:
		return lipgloss.Place(width, boxHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(spin+" Fetching "+w.metric.Name+"..."))

	case widgetError:
		msg := styles.ErrorText.Render("Error: "+w.err.Error()) + "\n\n" +
			styles.MutedText.Render("Press r to retry.")
		return lipgloss.Place(width, boxHeight, lipgloss.Center, lipgloss.Center, msg)

	case widgetSuccess:
		if w.empty() {
			return lipgloss.Place(width, boxHeight, lipgloss.Center, lipgloss.Center,
				styles.MutedText.Render("No data for this range."))
		}
		unit := w.metric.PrimaryField().Unit
		chart := components.TimeSeriesChart(w.result.Series.Points, unit, w.result.Window.Bucket, width, dashChartHeight)
		summary := components.SeriesSummary(w.result.Series.Points, unit)
		return lipgloss.JoinVertical(lipgloss.Left, chart, summary, w.sourceLine())

	default:
		return lipgloss.Place(width, boxHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Waiting for first load..."))
	}
}

// sourceLine renders the provenance badge under a chart, e.g.
// "● live · Supabase".
func (w widget) sourceLine() string {
	status := sourceStatus(w.result)
	line := styles.StatusIndicator(status)
	if w.result != nil && w.result.SourceName != "" {
		line += styles.MutedText.Render(" · " + w.result.SourceName)
	}
	if w.result != nil && w.result.Duration > 0 {
		line += styles.MutedText.Render(fmt.Sprintf(" · %dms", w.result.Duration.Milliseconds()))
	}
	return line
}

// sourceStatus classifies where a result's rows came from: the primary
// source ("live"), a fallback API ("fallback"), or the local snapshot
// cache ("snapshot").
func sourceStatus(result *pipeline.Result) string {
	switch {
	case result == nil:
		return "unknown"
	case result.SourceName == pipeline.SnapshotSourceName:
		return "snapshot"
	case result.Fallback:
		return "fallback"
	default:
		return "live"
	}
}
