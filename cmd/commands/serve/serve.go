package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yashh-d/chainpulse/internal/api"
	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultAddr is the listen address when neither --addr nor the
// api-addr config key names one.
const defaultAddr = ":8787"

// refreshMetricIDs is the series set the refresh loop broadcasts for
// the default network.
var refreshMetricIDs = []string{"price", "tx-count", "tvl", "fees-paid"}

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the metrics pipeline over HTTP, with a websocket feed for
pushed updates.

Endpoints:
  GET /api/v1/healthz
  GET /api/v1/networks
  GET /api/v1/ranges
  GET /api/v1/series/{network}/{metric}?range=1Y
  GET /api/v1/distribution/{network}?by=stablecoin&range=30D
  GET /ws

Examples:
  # Listen on the configured address (api-addr, default :8787)
  chainpulse serve

  # Explicit address, pushing fresh series every minute
  chainpulse serve --addr :9000 --refresh 60s`,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.Flags().String("addr", "", "Listen address (default: api-addr config key, else "+defaultAddr+")")
	cmd.Flags().Duration("refresh", 0, "Interval for websocket series broadcasts (0 disables)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.APIAddr
	}
	if addr == "" {
		addr = defaultAddr
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	var opts []pipeline.Option
	repo, err := snapstore.Open()
	if err == nil {
		opts = append(opts, pipeline.WithSnapshots(repo))
		defer repo.Close()
	} else {
		logger.Warn("snapshot store unavailable, serving without cache", zap.Error(err))
	}

	runner := pipeline.New(auth.DefaultStore(), opts...)
	server := api.New(runner, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh, _ := cmd.Flags().GetDuration("refresh")
	if refresh > 0 {
		if cfg.DefaultNetwork == "" {
			logger.Warn("refresh loop disabled: no default network configured")
		} else if _, err := networks.Lookup(cfg.DefaultNetwork); err != nil {
			logger.Warn("refresh loop disabled: unknown default network",
				zap.String("network", cfg.DefaultNetwork))
		} else {
			go refreshLoop(ctx, runner, server, logger, cfg.DefaultNetwork, cfg.DefaultRange, refresh)
		}
	}

	return server.Start(ctx, addr)
}

// refreshLoop periodically re-runs the broadcast set and pushes results
// to websocket clients. Failures are logged and skipped; the loop keeps
// going until ctx is cancelled.
func refreshLoop(ctx context.Context, runner *pipeline.Runner, server *api.Server, logger *zap.Logger, networkID, rangeToken string, interval time.Duration) {
	metricList := refreshMetrics(networkID)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, metric := range metricList {
			result, err := runner.RunSeries(ctx, networkID, metric.ID, rangeToken)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("refresh failed",
					zap.String("network", networkID),
					zap.String("metric", metric.ID),
					zap.Error(err))
				continue
			}
			server.BroadcastSeries(result)
		}
	}
}

// refreshMetrics resolves the broadcast set for a network, dropping
// anything it does not track.
func refreshMetrics(networkID string) []domain.Metric {
	var out []domain.Metric
	for _, id := range refreshMetricIDs {
		if !networks.Supports(networkID, id) {
			continue
		}
		metric, err := networks.LookupMetric(id)
		if err != nil {
			continue
		}
		out = append(out, metric)
	}
	return out
}
