package board

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/timerange"
	"github.com/yashh-d/chainpulse/internal/tui"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func SaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Save a dashboard board",
		Long: `Save a named dashboard layout. Without flags this opens the setup
form; with --network and --metrics it saves directly, which suits
scripts. Saving an existing name overwrites it (the form starts
prefilled).

Examples:
  # Interactive setup, prompts for everything
  chainpulse board save

  # Edit an existing board in the form
  chainpulse board save eth-overview

  # Non-interactive save
  chainpulse board save eth-overview --network ethereum --metrics tvl,tx-count --range 6M`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runSave,
		SilenceUsage: true,
	}

	cmd.Flags().String("network", "", "Network ID for a non-interactive save")
	cmd.Flags().String("metrics", "", "Comma-separated metric IDs for a non-interactive save")
	cmd.Flags().String("range", "", "Range token: 7D, 30D, 1M, 3M, 6M, 1Y, ALL")

	return cmd
}

func runSave(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = util.NormalizeKey(args[0])
	}

	repo, err := boardstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open board store: %w", err)
	}
	defer repo.Close()

	networkFlag, _ := cmd.Flags().GetString("network")
	metricsFlag, _ := cmd.Flags().GetString("metrics")
	rangeFlag, _ := cmd.Flags().GetString("range")

	if networkFlag != "" || metricsFlag != "" {
		return saveDirect(cmd, repo, name, networkFlag, metricsFlag, rangeFlag)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no terminal for the setup form: pass --network and --metrics instead")
	}

	prefill := boardstore.Board{Name: name, Range: rangeFlag}
	if name != "" {
		existing, err := repo.Get(name)
		if err != nil {
			return fmt.Errorf("failed to read board %q: %w", name, err)
		}
		if existing != nil {
			prefill = *existing
		}
	}

	runner := pipeline.New(auth.DefaultStore())

	board, err := tui.BoardForm(runner, prefill)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return err
	}

	if err := repo.Save(board); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved board %q (%s, %d metrics)\n", board.Name, board.Network, len(board.Metrics))
	return nil
}

// saveDirect validates flag input and saves without opening the form.
func saveDirect(cmd *cobra.Command, repo boardstore.Repository, name, networkFlag, metricsFlag, rangeFlag string) error {
	if name == "" {
		return fmt.Errorf("a board name is required for a non-interactive save")
	}
	if err := util.ValidateSlug(name); err != nil {
		return err
	}

	networkID := util.NormalizeKey(networkFlag)
	if networkID == "" {
		return fmt.Errorf("--network is required when --metrics is given")
	}
	if _, err := networks.Lookup(networkID); err != nil {
		return fmt.Errorf("unknown network %q", networkFlag)
	}

	metricIDs := util.SplitList(metricsFlag)
	if len(metricIDs) == 0 {
		return fmt.Errorf("--metrics is required when --network is given")
	}
	for _, id := range metricIDs {
		if _, err := networks.LookupMetric(id); err != nil {
			return fmt.Errorf("unknown metric %q", id)
		}
		if !networks.Supports(networkID, id) {
			return fmt.Errorf("network %q does not track %q", networkID, id)
		}
	}

	rangeToken := ""
	if rangeFlag != "" {
		canonical, err := canonicalRange(rangeFlag)
		if err != nil {
			return err
		}
		rangeToken = canonical
	}

	board := &boardstore.Board{
		Name:    name,
		Network: networkID,
		Metrics: metricIDs,
		Range:   rangeToken,
	}
	if err := repo.Save(board); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved board %q (%s, %d metrics)\n", board.Name, board.Network, len(board.Metrics))
	return nil
}

// canonicalRange maps a case-insensitive token to its canonical form.
func canonicalRange(token string) (string, error) {
	for _, t := range timerange.Tokens() {
		if strings.EqualFold(t, strings.TrimSpace(token)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown range token %q (valid: %s)", token, strings.Join(timerange.Tokens(), ", "))
}
