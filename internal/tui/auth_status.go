package tui

import (
	"errors"
	"fmt"

	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/tui/components"
	"github.com/yashh-d/chainpulse/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Credential status ---

type credentialStatus struct {
	service string
	detail  string // "key stored", "no key", or error message
	ok      bool
}

// serviceBlurbs explains what each credential slot unlocks, shown next to
// the status so users know which keys are worth adding.
var serviceBlurbs = map[string]string{
	"supabase":  "primary metrics store",
	"dune":      "on-chain query fallback",
	"coingecko": "pro price endpoints",
}

// --- Auth status model ---

type authStatusModel struct {
	statuses []credentialStatus

	width  int
	height int
}

// RunAuthStatus starts the full-window credential status TUI.
func RunAuthStatus(store auth.Store) error {
	statuses := make([]credentialStatus, 0, len(auth.KnownServices))
	for _, name := range auth.KnownServices {
		_, err := store.GetToken(name)
		switch {
		case err == nil:
			statuses = append(statuses, credentialStatus{service: name, detail: "key stored", ok: true})
		case errors.Is(err, auth.ErrTokenNotFound):
			statuses = append(statuses, credentialStatus{service: name, detail: "no key", ok: false})
		default:
			statuses = append(statuses, credentialStatus{service: name, detail: fmt.Sprintf("error: %v", err), ok: false})
		}
	}

	m := authStatusModel{statuses: statuses}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", "")
	footerBindings := []components.KeyBinding{
		{Key: "q", Desc: "quit"},
	}
	footer := components.Footer(m.width, footerBindings, "")

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	contentH := m.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m authStatusModel) renderContent(height int) string {
	if len(m.statuses) == 0 {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No credential slots registered."),
		)
	}

	title := styles.Title.Render("Service Credentials")

	cardWidth := 56
	labelWidth := 12
	statusWidth := 12

	rows := make([]string, 0, len(m.statuses))
	for _, cs := range m.statuses {
		name := styles.Label.Width(labelWidth).Render(cs.service)

		// Pad before styling so escape codes don't skew widths.
		detail := fmt.Sprintf("%-*s", statusWidth, cs.detail)
		var statusText string
		if cs.ok {
			statusText = styles.SuccessText.Render(detail)
		} else {
			statusText = styles.MutedText.Render(detail)
		}

		row := name + statusText
		if blurb, ok := serviceBlurbs[cs.service]; ok {
			row += styles.MutedText.Render(blurb)
		}
		rows = append(rows, row)
	}

	content := ""
	for i, row := range rows {
		content += row
		if i < len(rows)-1 {
			content += "\n"
		}
	}

	card := styles.Card.Width(cardWidth).Render(content)

	hint := styles.MutedText.Render("Add a key with: chainpulse auth login <service>")

	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card, "", hint)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		combined,
	)
}
