package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// --- Refresh configuration ---

// dashRefreshInterval is the delay between auto-refresh cycles. The
// tracked metrics are daily aggregates, and a full cycle fans out one
// request per widget, so 60 s keeps a five-widget board comfortably
// under the free-tier rate limits of the fallback APIs.
const dashRefreshInterval = 60 * time.Second

// --- Messages ---

// refreshTickMsg tells the dashboard it is time for the next
// auto-refresh cycle.
type refreshTickMsg struct{}

// --- Refresh poller ---

// refreshPoller drives the dashboard's optional auto-refresh loop. It is
// a value type: methods return a new copy plus any tea.Cmd to execute.
// Ticks that arrive after the poller is stopped are ignored, so a
// toggle-off never has to chase an in-flight tea.Tick.
type refreshPoller struct {
	active   bool
	interval time.Duration

	// cycles counts completed refresh cycles since the poller started,
	// for the footer annotation.
	cycles int
}

// newRefreshPoller creates a stopped poller with the default interval.
func newRefreshPoller() refreshPoller {
	return refreshPoller{interval: dashRefreshInterval}
}

// Toggle flips the poller on or off. When turning on it schedules the
// first tick; when turning off it returns no command and lets any
// pending tick expire unanswered.
func (rp refreshPoller) Toggle() (refreshPoller, tea.Cmd) {
	if rp.active {
		return rp.Stop(), nil
	}
	rp.active = true
	rp.cycles = 0
	return rp, rp.scheduleTick()
}

// Stop deactivates the poller.
func (rp refreshPoller) Stop() refreshPoller {
	rp.active = false
	return rp
}

// HandleTick processes a refreshTickMsg. The bool reports whether the
// dashboard should fire a refresh cycle now; a stale tick after the
// poller was stopped reports false and schedules nothing.
func (rp refreshPoller) HandleTick() (refreshPoller, tea.Cmd, bool) {
	if !rp.active {
		return rp, nil, false
	}
	rp.cycles++
	return rp, rp.scheduleTick(), true
}

// scheduleTick returns a tea.Cmd that sends a refreshTickMsg after the
// configured interval.
func (rp refreshPoller) scheduleTick() tea.Cmd {
	return tea.Tick(rp.interval, func(_ time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
