package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/timerange"
	"github.com/yashh-d/chainpulse/internal/tui/components"
	"github.com/yashh-d/chainpulse/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// dashStartMsg kicks off the first load of every widget once the
// program is running.
type dashStartMsg struct{}

// DashConfig configures the dashboard TUI.
type DashConfig struct {
	Runner *pipeline.Runner

	// Network and Metrics define the widget grid, in display order.
	Network domain.Network
	Metrics []domain.Metric

	// Range is the initial range token; empty means the default.
	Range string

	// Board, when set, names the saved board this layout came from and
	// appears in the header breadcrumb.
	Board string

	// Offline is display-only; the runner decides where data comes from.
	Offline bool
}

// --- Dashboard model ---

type dashModel struct {
	cfg     DashConfig
	widgets []widget

	tokens     []string
	rangeToken string

	focus  int
	width  int
	height int

	spinner spinner.Model
	poller  refreshPoller

	status      string
	statusLevel components.StatusLevel
	lastUpdated time.Time

	bindings []components.KeyBinding
}

// RunDash starts the full-window metrics dashboard.
func RunDash(cfg DashConfig) error {
	if cfg.Runner == nil {
		return fmt.Errorf("dashboard needs a pipeline runner")
	}
	if len(cfg.Metrics) == 0 {
		return fmt.Errorf("dashboard needs at least one metric")
	}
	if cfg.Range == "" {
		cfg.Range = timerange.DefaultToken
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	widgets := make([]widget, len(cfg.Metrics))
	for i, metric := range cfg.Metrics {
		widgets[i] = newWidget(i, cfg.Runner, cfg.Network, metric, cfg.Range)
	}

	tokens := timerange.Tokens()
	m := dashModel{
		cfg:        cfg,
		widgets:    widgets,
		tokens:     tokens,
		rangeToken: cfg.Range,
		spinner:    s,
		poller:     newRefreshPoller(),
		bindings: []components.KeyBinding{
			{Key: "tab", Desc: "focus"},
			{Key: "[ ]", Desc: "range"},
			{Key: fmt.Sprintf("1-%d", len(tokens)), Desc: "jump"},
			{Key: "r", Desc: "refresh"},
			{Key: "p", Desc: "auto"},
			{Key: "q", Desc: "quit"},
		},
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func (m dashModel) Init() tea.Cmd {
	return func() tea.Msg { return dashStartMsg{} }
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dashStartMsg:
		return m, m.reloadAll()

	case seriesLoadedMsg:
		if msg.widgetID < 0 || msg.widgetID >= len(m.widgets) {
			return m, nil
		}
		w, accepted := m.widgets[msg.widgetID].HandleLoaded(msg)
		if accepted {
			m.widgets[msg.widgetID] = w
			m.lastUpdated = time.Now()
		}
		return m, nil

	case seriesErrorMsg:
		if msg.widgetID < 0 || msg.widgetID >= len(m.widgets) {
			return m, nil
		}
		w, accepted := m.widgets[msg.widgetID].HandleError(msg)
		if !accepted {
			return m, nil
		}
		m.widgets[msg.widgetID] = w
		if errors.Is(msg.err, domain.ErrRateLimited) && m.poller.active {
			m.poller = m.poller.Stop()
			m.status = "Auto-refresh paused (rate limited)"
			m.statusLevel = components.StatusWarn
		}
		return m, nil

	case refreshTickMsg:
		rp, cmd, fire := m.poller.HandleTick()
		m.poller = rp
		if !fire {
			return m, nil
		}
		return m, tea.Batch(cmd, m.reloadAll())

	case spinner.TickMsg:
		if m.anyLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m dashModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "r":
		return m, m.reloadAll()

	case "tab", "right", "l":
		if len(m.widgets) > 0 {
			m.focus = (m.focus + 1) % len(m.widgets)
		}
		return m, nil

	case "shift+tab", "left", "h":
		if len(m.widgets) > 0 {
			m.focus = (m.focus + len(m.widgets) - 1) % len(m.widgets)
		}
		return m, nil

	case "]":
		return m, m.cycleRange(1)

	case "[":
		return m, m.cycleRange(-1)

	case "p":
		rp, cmd := m.poller.Toggle()
		m.poller = rp
		if m.poller.active {
			m.status = fmt.Sprintf("Auto-refresh every %.0fs", m.poller.interval.Seconds())
		} else {
			m.status = "Auto-refresh off"
		}
		m.statusLevel = components.StatusInfo
		return m, cmd

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < len(m.tokens) {
				return m, m.selectRange(m.tokens[idx])
			}
		}
		return m, nil
	}
}

// --- Reload helpers ---

// reloadAll re-fetches every widget and restarts the spinner.
func (m *dashModel) reloadAll() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.widgets)+1)
	for i := range m.widgets {
		w, cmd := m.widgets[i].Reload()
		m.widgets[i] = w
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.spinner.Tick)
	return tea.Batch(cmds...)
}

// selectRange retargets every widget to the given token and reloads.
func (m *dashModel) selectRange(token string) tea.Cmd {
	if token == m.rangeToken {
		return nil
	}
	m.rangeToken = token
	for i := range m.widgets {
		m.widgets[i] = m.widgets[i].WithRange(token)
	}
	return m.reloadAll()
}

// cycleRange steps through the token list, wrapping at both ends.
func (m *dashModel) cycleRange(delta int) tea.Cmd {
	idx := indexOf(m.tokens, m.rangeToken) + delta
	if idx < 0 {
		idx = len(m.tokens) - 1
	}
	if idx >= len(m.tokens) {
		idx = 0
	}
	return m.selectRange(m.tokens[idx])
}

func (m dashModel) anyLoading() bool {
	for _, w := range m.widgets {
		if w.Loading() {
			return true
		}
	}
	return false
}

// --- Rendering ---

func (m dashModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	context := m.cfg.Network.Name
	if m.cfg.Offline {
		context += " · offline"
	}
	header := components.Header(m.width, m.breadcrumb(), context)
	tabs := components.RangeTabs(m.width, m.tokens, m.rangeToken)
	status := components.StatusBar(m.width, m.status, m.statusLevel)
	footer := components.Footer(m.width, m.bindings, m.footerAnnotation())

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(tabs) - lipgloss.Height(footer)
	if status != "" {
		contentH -= lipgloss.Height(status)
	}
	if contentH < 1 {
		contentH = 1
	}

	content := m.renderGrid(contentH)

	sections := []string{header, tabs, content}
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m dashModel) breadcrumb() string {
	if m.cfg.Board != "" {
		return m.cfg.Board
	}
	return "dash"
}

func (m dashModel) footerAnnotation() string {
	var parts []string
	if !m.lastUpdated.IsZero() {
		parts = append(parts, "updated "+humanize.Time(m.lastUpdated))
	}
	if m.poller.active {
		parts = append(parts, "auto on")
	}
	return strings.Join(parts, " · ")
}

// renderGrid lays the widget cards out in one or two columns depending
// on the terminal width.
func (m dashModel) renderGrid(height int) string {
	cols := 1
	if m.width >= 110 && len(m.widgets) > 1 {
		cols = 2
	}

	cardWidth := m.width/cols - 6
	if cardWidth > 96 {
		cardWidth = 96
	}
	if cardWidth < 40 {
		cardWidth = 40
	}

	spin := m.spinner.View()
	cards := make([]string, len(m.widgets))
	for i, w := range m.widgets {
		cards[i] = w.View(cardWidth, i == m.focus, spin)
	}

	rows := make([]string, 0, (len(cards)+cols-1)/cols)
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, grid)
}

// indexOf returns the index of s in list, or -1.
func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
