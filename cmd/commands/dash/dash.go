package dash

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"
	"github.com/yashh-d/chainpulse/internal/timerange"
	"github.com/yashh-d/chainpulse/internal/tui"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// defaultMetricIDs is the widget set shown when neither a board nor
// --metrics chooses one.
var defaultMetricIDs = []string{"price", "tx-count", "tvl", "fees-paid"}

// NewCommand returns the dash command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the metrics dashboard",
		Long: `Open the full-screen metrics dashboard. Without flags it offers the
saved boards, or falls back to the configured default network with a
standard widget set.

Keys inside the dashboard: tab cycles widgets, number keys switch the
range, r refreshes, p toggles the auto-refresh poller, q quits.

Examples:
  # Pick from saved boards (or use the default network)
  chainpulse dash

  # A saved layout
  chainpulse dash --board eth-overview

  # Ad hoc layout
  chainpulse dash --network avalanche --metrics tx-count,fees-paid --range 90D

  # Cached data only
  chainpulse dash --network ethereum --offline`,
		Args:         cobra.NoArgs,
		RunE:         runDash,
		SilenceUsage: true,
	}

	cmd.Flags().String("board", "", "Open a saved board by name")
	cmd.Flags().String("network", "", "Network ID (default: configured default-network)")
	cmd.Flags().String("metrics", "", "Comma-separated metric IDs")
	cmd.Flags().String("range", "", "Initial range token: 7D, 30D, 1M, 3M, 6M, 1Y, ALL")
	cmd.Flags().Bool("offline", false, "Serve widgets from the snapshot cache")

	return cmd
}

func runDash(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard needs a terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	layout, err := resolveLayout(cmd, cfg)
	if err != nil {
		return err
	}

	network, err := networks.Lookup(layout.Network)
	if err != nil {
		return fmt.Errorf("unknown network %q", layout.Network)
	}

	metricList, err := resolveMetricList(network.ID, layout.Metrics)
	if err != nil {
		return err
	}

	rangeToken, _ := cmd.Flags().GetString("range")
	if rangeToken == "" {
		rangeToken = layout.Range
	}
	if rangeToken == "" {
		rangeToken = cfg.DefaultRange
	}
	if rangeToken != "" {
		canonical, err := canonicalRange(rangeToken)
		if err != nil {
			return err
		}
		rangeToken = canonical
	}

	offline, _ := cmd.Flags().GetBool("offline")

	var opts []pipeline.Option
	repo, err := snapstore.Open()
	if err == nil {
		opts = append(opts, pipeline.WithSnapshots(repo))
		defer repo.Close()
	} else if offline {
		return fmt.Errorf("offline mode needs the snapshot store: %w", err)
	}
	if offline {
		opts = append(opts, pipeline.WithOffline(true))
	}

	runner := pipeline.New(auth.DefaultStore(), opts...)

	return tui.RunDash(tui.DashConfig{
		Runner:  runner,
		Network: network,
		Metrics: metricList,
		Range:   rangeToken,
		Board:   layout.Name,
		Offline: offline,
	})
}

// resolveLayout decides what the dashboard displays: an explicit board,
// an ad hoc --network layout, a board picked interactively, or the
// configured default network.
func resolveLayout(cmd *cobra.Command, cfg *config.Config) (boardstore.Board, error) {
	boardFlag, _ := cmd.Flags().GetString("board")
	networkFlag, _ := cmd.Flags().GetString("network")
	metricsFlag, _ := cmd.Flags().GetString("metrics")

	if boardFlag != "" {
		return loadBoard(util.NormalizeKey(boardFlag))
	}

	if networkFlag != "" {
		return boardstore.Board{
			Network: util.NormalizeKey(networkFlag),
			Metrics: util.SplitList(metricsFlag),
		}, nil
	}

	// No flags: offer the saved boards when there are any.
	repo, err := boardstore.Open()
	if err == nil {
		boards, listErr := repo.List()
		repo.Close()
		if listErr == nil && len(boards) > 0 {
			name, pickErr := tui.PickBoardForm(boards)
			if pickErr != nil {
				if errors.Is(pickErr, tui.ErrAborted) {
					return boardstore.Board{}, fmt.Errorf("aborted")
				}
				return boardstore.Board{}, pickErr
			}
			return loadBoard(name)
		}
	}

	if cfg.DefaultNetwork != "" {
		return boardstore.Board{
			Network: cfg.DefaultNetwork,
			Metrics: util.SplitList(metricsFlag),
		}, nil
	}

	return boardstore.Board{}, fmt.Errorf("nothing to show: pass --network or --board, save a board, or set a default with 'chainpulse config set default-network <id>'")
}

func loadBoard(name string) (boardstore.Board, error) {
	repo, err := boardstore.Open()
	if err != nil {
		return boardstore.Board{}, fmt.Errorf("failed to open board store: %w", err)
	}
	defer repo.Close()

	board, err := repo.Get(name)
	if err != nil {
		return boardstore.Board{}, fmt.Errorf("failed to read board %q: %w", name, err)
	}
	if board == nil {
		return boardstore.Board{}, fmt.Errorf("board %q not found (see 'chainpulse board list')", name)
	}
	return *board, nil
}

// resolveMetricList maps metric IDs to catalog entries, applying the
// default widget set when none were chosen.
func resolveMetricList(networkID string, ids []string) ([]domain.Metric, error) {
	if len(ids) == 0 {
		var out []domain.Metric
		for _, id := range defaultMetricIDs {
			if !networks.Supports(networkID, id) {
				continue
			}
			metric, err := networks.LookupMetric(id)
			if err != nil {
				continue
			}
			out = append(out, metric)
		}
		return out, nil
	}

	out := make([]domain.Metric, 0, len(ids))
	for _, id := range ids {
		metric, err := networks.LookupMetric(id)
		if err != nil {
			return nil, fmt.Errorf("unknown metric %q", id)
		}
		if !networks.Supports(networkID, id) {
			return nil, fmt.Errorf("network %q does not track %q", networkID, id)
		}
		out = append(out, metric)
	}
	return out, nil
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
