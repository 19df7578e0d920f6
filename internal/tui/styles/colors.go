// Package styles provides the centralized color palette and style definitions
// for the chainpulse TUI. All visual constants live here so the rest of the
// TUI code can reference a single source of truth.
package styles

import "github.com/charmbracelet/lipgloss"

// --- Color palette (professional & minimal) ---

var (
	// Core text
	White   = lipgloss.Color("#E2E2E2")
	Gray    = lipgloss.Color("#888888")
	Muted   = lipgloss.Color("#555555")
	DimGray = lipgloss.Color("#444444")
	Dark    = lipgloss.Color("#333333")

	// Accent
	Blue     = lipgloss.Color("#5FAFFF")
	DimBlue  = lipgloss.Color("#3A6FA0")
	DarkBlue = lipgloss.Color("#1A2F40")

	// Status
	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")

	// Chart accents, cycled across distribution bars and secondary series.
	Cyan   = lipgloss.Color("#5FD7D7")
	Purple = lipgloss.Color("#AF87FF")
	Orange = lipgloss.Color("#FFAF5F")

	// Surfaces
	SurfaceBg   = lipgloss.Color("#1A1A2E")
	SurfaceDim  = lipgloss.Color("#16213E")
	SurfaceCard = lipgloss.Color("#0F3460")
)

// ChartPalette is the ordered set of colors for multi-category charts.
// Callers index modulo its length so any number of categories renders.
var ChartPalette = []lipgloss.Color{Blue, Green, Purple, Orange, Cyan, Yellow}
