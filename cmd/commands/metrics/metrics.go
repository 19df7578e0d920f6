package metrics

import (
	"fmt"
	"strings"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
)

// NewCommand returns the metrics parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Fetch and render network metrics",
		Long: `Fetch time-series metrics for a network and print them as tables,
charts, or machine-readable output.

Commands that take a <network> argument fall back to the configured
default network when it is omitted (see 'chainpulse config set
default-network').

Examples:
  # List every metric avalanche tracks
  chainpulse metrics list avalanche

  # Summarize a year of ethereum TVL
  chainpulse metrics show ethereum tvl

  # Braille chart straight to the terminal
  chainpulse metrics chart avalanche tx-count --range 90D

  # Stablecoin share of the chain
  chainpulse metrics dist ethereum --by stablecoin`,
		SilenceUsage:      true,
		PersistentPreRunE: resolveRange,
	}

	cmd.PersistentFlags().String("range", "", "Range token: 7D, 30D, 1M, 3M, 6M, 1Y, ALL")

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(ChartCommand())
	cmd.AddCommand(ExportCommand())
	cmd.AddCommand(DistCommand())
	cmd.AddCommand(DuneCommand())

	return cmd
}

// resolveRange fills the --range flag from the configured default when
// the user did not pass one. An empty result is fine: the range
// resolver applies its own default.
func resolveRange(cmd *cobra.Command, args []string) error {
	flag := cmd.Flag("range")
	if flag == nil || flag.Changed {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DefaultRange != "" {
		flag.Value.Set(cfg.DefaultRange)
	}
	return nil
}

// splitNetworkArgs resolves the (network, metric) pair for commands
// declared with RangeArgs(1, 2): two args are explicit, one arg is a
// metric against the configured default network.
func splitNetworkArgs(args []string) (networkID, metricID string, err error) {
	if len(args) == 2 {
		return util.NormalizeKey(args[0]), util.NormalizeKey(args[1]), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DefaultNetwork == "" {
		return "", "", fmt.Errorf("no network given: pass <network> <metric> or set one with 'chainpulse config set default-network <id>'")
	}
	return cfg.DefaultNetwork, util.NormalizeKey(args[0]), nil
}

// resolveNetwork returns the network from an optional positional arg,
// falling back to the configured default.
func resolveNetwork(args []string) (string, error) {
	if len(args) > 0 {
		return util.NormalizeKey(args[0]), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DefaultNetwork == "" {
		return "", fmt.Errorf("no network given: pass <network> or set one with 'chainpulse config set default-network <id>'")
	}
	return cfg.DefaultNetwork, nil
}

// checkPair validates a network/metric pair up front so unknown
// identifiers fail with a hint instead of a fetch error.
func checkPair(networkID, metricID string) error {
	if _, err := networks.Lookup(networkID); err != nil {
		return fmt.Errorf("unknown network %q (known: %s)", networkID, strings.Join(networkIDs(), ", "))
	}
	if _, err := networks.LookupMetric(metricID); err != nil {
		return fmt.Errorf("unknown metric %q (known: %s)", metricID, strings.Join(metricIDs(networks.Metrics()), ", "))
	}
	if !networks.Supports(networkID, metricID) {
		return fmt.Errorf("network %q does not track %q (available: %s)",
			networkID, metricID, strings.Join(metricIDs(networks.MetricsFor(networkID)), ", "))
	}
	return nil
}

func networkIDs() []string {
	list := networks.List()
	ids := make([]string, len(list))
	for i, n := range list {
		ids[i] = n.ID
	}
	return ids
}

func metricIDs(metrics []domain.Metric) []string {
	ids := make([]string, len(metrics))
	for i, m := range metrics {
		ids[i] = m.ID
	}
	return ids
}

// newRunner builds the pipeline runner one-shot commands share. The
// snapshot store is best effort: when the local database cannot be
// opened the command still runs, it just skips the write-through cache.
// Offline mode is the exception, since it has nothing else to read from.
func newRunner(offline bool) (*pipeline.Runner, func(), error) {
	var opts []pipeline.Option
	cleanup := func() {}

	repo, err := snapstore.Open()
	if err == nil {
		opts = append(opts, pipeline.WithSnapshots(repo))
		cleanup = func() { repo.Close() }
	} else if offline {
		return nil, nil, fmt.Errorf("offline mode needs the snapshot store: %w", err)
	}

	if offline {
		opts = append(opts, pipeline.WithOffline(true))
	}

	return pipeline.New(auth.DefaultStore(), opts...), cleanup, nil
}
