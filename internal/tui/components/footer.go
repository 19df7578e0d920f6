package components

import (
	"strings"

	"github.com/yashh-d/chainpulse/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding represents a single key binding for the footer.
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer renders the key binding help bar at the bottom of the screen.
// The annotation, when non-empty, is right-aligned on the same line
// (e.g. "updated 3s ago").
func Footer(width int, bindings []KeyBinding, annotation string) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	sep := styles.KeySepStyle.Render("  ")
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.FormatKeyBinding(b.Key, b.Desc)
	}

	content := strings.Join(parts, sep)

	if annotation != "" {
		right := styles.MutedText.Render(annotation)
		innerWidth := width - 4 // account for padding
		gap := innerWidth - lipgloss.Width(content) - lipgloss.Width(right)
		if gap > 0 {
			content += strings.Repeat(" ", gap) + right
		}
	}

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(styles.DimGray).
		Render(content)

	return bar
}
