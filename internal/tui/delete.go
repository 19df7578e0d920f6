package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/boardstore"

	"github.com/charmbracelet/huh"
)

// ErrDeleteAborted is returned when a user cancels the delete flow.
var ErrDeleteAborted = errors.New("board deletion aborted by user")

// BoardDeleteForm runs an interactive wizard that picks a saved board and
// asks for confirmation before returning it. The caller performs the actual
// delete. A non-empty name skips the selection step.
func BoardDeleteForm(repo boardstore.Repository, name string) (*boardstore.Board, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	if name != "" {
		found, err := repo.Get(name)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, fmt.Errorf("board %q not found", name)
		}
		if err := confirmBoardDelete(accessible, *found); err != nil {
			return nil, err
		}
		return found, nil
	}

	boards, err := repo.List()
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, errors.New("no saved boards")
	}

	// Build a lookup so we can map the selected name back to a full Board.
	boardByName := make(map[string]boardstore.Board, len(boards))
	for _, b := range boards {
		boardByName[b.Name] = b
	}

	// --- Form: Select board + Summary + Confirm ---

	var selected string
	selectField := huh.NewSelect[string]().
		Title("Select board to delete").
		Options(buildBoardOptions(boards)...).
		Value(&selected).
		Height(selectHeight(len(boards), 12))

	summaryNote := huh.NewNote().
		Title("Board details").
		DescriptionFunc(func() string {
			if b, ok := boardByName[selected]; ok {
				return buildDeleteSummary(b)
			}
			return ""
		}, &selected)

	confirm := false
	confirmField := huh.NewConfirm().
		Title("Delete this board? This action cannot be undone.").
		Affirmative("Yes, delete").
		Negative("Cancel").
		Value(&confirm)

	if err := runForm(accessible,
		huh.NewGroup(selectField),
		huh.NewGroup(summaryNote, confirmField),
	); err != nil {
		if errors.Is(err, ErrAborted) {
			return nil, ErrDeleteAborted
		}
		return nil, err
	}

	if !confirm {
		return nil, ErrDeleteAborted
	}

	board := boardByName[selected]
	return &board, nil
}

// confirmBoardDelete shows the summary and confirmation for a known board.
func confirmBoardDelete(accessible bool, board boardstore.Board) error {
	summaryNote := huh.NewNote().
		Title("Board details").
		Description(buildDeleteSummary(board))

	confirm := false
	confirmField := huh.NewConfirm().
		Title("Delete this board? This action cannot be undone.").
		Affirmative("Yes, delete").
		Negative("Cancel").
		Value(&confirm)

	if err := runForm(accessible, huh.NewGroup(summaryNote, confirmField)); err != nil {
		if errors.Is(err, ErrAborted) {
			return ErrDeleteAborted
		}
		return err
	}

	if !confirm {
		return ErrDeleteAborted
	}
	return nil
}

// buildDeleteSummary formats a board's details for the confirmation summary.
func buildDeleteSummary(b boardstore.Board) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Network: %s\n", b.Network)

	if len(b.Metrics) > 0 {
		fmt.Fprintf(&sb, "Metrics: %s\n", strings.Join(b.Metrics, ", "))
	}
	if b.Range != "" {
		fmt.Fprintf(&sb, "Range: %s\n", b.Range)
	}
	if !b.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "Updated: %s\n", b.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return strings.TrimSpace(sb.String())
}
