package components

import (
	"github.com/yashh-d/chainpulse/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// StatusLevel selects the rendering style for a status bar message.
type StatusLevel int

const (
	// StatusInfo renders muted, for progress and confirmation messages.
	StatusInfo StatusLevel = iota
	// StatusWarn renders yellow, for degraded states such as a fallback
	// source answering in place of the primary.
	StatusWarn
	// StatusError renders red for failures.
	StatusError
)

// StatusBar renders a status message line between the content and footer.
func StatusBar(width int, message string, level StatusLevel) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	switch level {
	case StatusWarn:
		style = styles.WarningText
	case StatusError:
		style = styles.ErrorText
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}
