package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/boardstore"

	"github.com/charmbracelet/huh"
)

// PickBoardForm prompts for one of the saved boards and returns its name.
func PickBoardForm(boards []boardstore.Board) (string, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	var selected string
	selectField := huh.NewSelect[string]().
		Title("Open board").
		Options(buildBoardOptions(boards)...).
		Value(&selected).
		Height(selectHeight(len(boards), 12))

	if err := runForm(accessible, huh.NewGroup(selectField)); err != nil {
		return "", err
	}
	return selected, nil
}

// buildBoardOptions builds huh select options from a slice of boards.
func buildBoardOptions(boards []boardstore.Board) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(boards))
	for _, b := range boards {
		options = append(options, huh.NewOption(boardOptionLabel(b), b.Name))
	}
	return options
}

// boardOptionLabel formats a board for display in a selection list.
func boardOptionLabel(b boardstore.Board) string {
	parts := []string{b.Name}

	if b.Network != "" {
		parts = append(parts, b.Network)
	}
	switch n := len(b.Metrics); {
	case n == 1:
		parts = append(parts, "1 metric")
	case n > 1:
		parts = append(parts, fmt.Sprintf("%d metrics", n))
	}
	if b.Range != "" {
		parts = append(parts, b.Range)
	}

	return strings.Join(parts, " - ")
}
