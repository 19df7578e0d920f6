package cmd

import (
	"os"

	"github.com/yashh-d/chainpulse/cmd/commands/auth"
	"github.com/yashh-d/chainpulse/cmd/commands/board"
	"github.com/yashh-d/chainpulse/cmd/commands/cache"
	cfgcmd "github.com/yashh-d/chainpulse/cmd/commands/config"
	"github.com/yashh-d/chainpulse/cmd/commands/dash"
	"github.com/yashh-d/chainpulse/cmd/commands/metrics"
	"github.com/yashh-d/chainpulse/cmd/commands/network"
	"github.com/yashh-d/chainpulse/cmd/commands/serve"
	"github.com/yashh-d/chainpulse/internal/sources"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "chainpulse",
		Short: "A terminal dashboard for blockchain network metrics",
		Long: `chainpulse charts blockchain network metrics in the terminal: price,
market cap, TVL, transactions, fees, stablecoin supply, and more across
Avalanche, Bitcoin, Ethereum, Polygon, and Solana.

Data comes from a Supabase metrics store with public fallbacks
(CoinGecko, DefiLlama) and Dune Analytics ecosystem queries.

Quick start:
  chainpulse dash --network avalanche    # Live dashboard
  chainpulse metrics chart ethereum tvl  # One chart, straight to stdout
  chainpulse board save                  # Save a dashboard layout
  chainpulse cache sync avalanche        # Snapshot series for offline use`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(network.NewCommand())
	cmd.AddCommand(metrics.NewCommand())
	cmd.AddCommand(board.NewCommand())
	cmd.AddCommand(cache.NewCommand())
	cmd.AddCommand(dash.NewCommand())
	cmd.AddCommand(serve.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sources.RegisterSupabase()
	sources.RegisterCoinGecko()
	sources.RegisterDefiLlama()
	sources.RegisterLlamaStables()
	sources.RegisterDune()

	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
