// Package components provides reusable Bubbletea UI building blocks for
// the chainpulse TUI. These are render-only helpers (not tea.Model) used
// by the main TUI models to compose views.
package components

import (
	"strings"

	"github.com/yashh-d/chainpulse/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the application header bar.
//
//	┌──────────────────────────────────────────┐
//	│  chainpulse > Avalanche           1Y     │
//	└──────────────────────────────────────────┘
func Header(width int, breadcrumb string, context string) string {
	if width < 10 {
		return ""
	}

	leftStyle := styles.Title.Foreground(styles.Blue)
	left := leftStyle.Render("chainpulse")
	if breadcrumb != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(breadcrumb)
	}

	right := ""
	if context != "" {
		right = styles.Subtitle.Render(context)
	}

	// Calculate spacing between left and right.
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	innerWidth := width - 4 // account for padding
	gap := max(innerWidth-leftLen-rightLen, 1)

	content := left + strings.Repeat(" ", gap) + right

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(styles.DimGray).
		Render(content)

	return bar
}

// RangeTabs renders the horizontal range-token selector, highlighting the
// active token.
//
//	7D  30D  1M  3M  6M  [1Y]  ALL
func RangeTabs(width int, tokens []string, active string) string {
	if width < 10 || len(tokens) == 0 {
		return ""
	}

	parts := make([]string, len(tokens))
	for i, token := range tokens {
		if token == active {
			parts[i] = styles.RangeTabActive.Render(token)
		} else {
			parts[i] = styles.RangeTab.Render(token)
		}
	}

	row := strings.Join(parts, " ")

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(row)
}
