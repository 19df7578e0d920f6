package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// syncConcurrency caps parallel source fetches during a sync.
const syncConcurrency = 4

func SyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [network]",
		Short: "Fetch metrics into the snapshot cache",
		Long: `Fetch series for a network and write them to the snapshot cache.
Without --metrics every metric the network tracks is synced. Failures
are reported per metric and do not stop the rest.

Examples:
  # Everything avalanche tracks, over the default range
  chainpulse cache sync avalanche

  # Two metrics, full history
  chainpulse cache sync ethereum --metrics tvl,tx-count --range ALL`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runSync,
		SilenceUsage: true,
	}

	cmd.Flags().String("metrics", "", "Comma-separated metric IDs (default: all for the network)")
	cmd.Flags().String("range", "", "Range token: 7D, 30D, 1M, 3M, 6M, 1Y, ALL")

	return cmd
}

// syncOutcome is one metric's sync result, collected for ordered output.
type syncOutcome struct {
	metricID string
	rows     int
	source   string
	fallback bool
	duration time.Duration
	err      error
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	networkID := cfg.DefaultNetwork
	if len(args) == 1 {
		networkID = util.NormalizeKey(args[0])
	}
	if networkID == "" {
		return fmt.Errorf("no network given: pass <network> or set one with 'chainpulse config set default-network <id>'")
	}
	if _, err := networks.Lookup(networkID); err != nil {
		return fmt.Errorf("unknown network %q", networkID)
	}

	metricList, err := resolveMetrics(cmd, networkID)
	if err != nil {
		return err
	}

	rangeToken, _ := cmd.Flags().GetString("range")
	if rangeToken == "" {
		rangeToken = cfg.DefaultRange
	}

	repo, err := snapstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer repo.Close()

	runner := pipeline.New(auth.DefaultStore(), pipeline.WithSnapshots(repo))
	ctx := context.Background()

	outcomes := make([]syncOutcome, len(metricList))

	var g errgroup.Group
	g.SetLimit(syncConcurrency)
	for i, metric := range metricList {
		g.Go(func() error {
			result, err := runner.RunSeries(ctx, networkID, metric.ID, rangeToken)
			if err != nil {
				outcomes[i] = syncOutcome{metricID: metric.ID, err: err}
				return nil
			}
			outcomes[i] = syncOutcome{
				metricID: metric.ID,
				rows:     len(result.Rows),
				source:   result.SourceName,
				fallback: result.Fallback,
				duration: result.Duration,
			}
			return nil
		})
	}
	// Closures record failures in outcomes instead of returning them, so
	// one bad source cannot cancel the remaining fetches.
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: FAILED: %v\n", networkID, o.metricID, o.err)
			continue
		}

		source := o.source
		if o.fallback {
			source += " (fallback)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %d rows from %s in %s\n",
			networkID, o.metricID, o.rows, source, formatDuration(o.duration))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d metrics failed to sync", failed, len(metricList))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d metrics for %s\n", len(metricList), networkID)
	return nil
}

// resolveMetrics returns the metrics to sync: the --metrics flag when
// given, otherwise everything the network tracks.
func resolveMetrics(cmd *cobra.Command, networkID string) ([]domain.Metric, error) {
	metricsFlag, _ := cmd.Flags().GetString("metrics")
	if metricsFlag == "" {
		return networks.MetricsFor(networkID), nil
	}

	ids := util.SplitList(metricsFlag)
	if len(ids) == 0 {
		return nil, fmt.Errorf("--metrics is empty")
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
