// Package networks holds the built-in catalog of supported blockchain
// networks and their chartable metrics.
//
// The catalog is static: networks carry hardcoded "ALL" floor dates
// (deliberate constants near each chain's genesis, not data-driven
// minimums) and metrics carry a declared field schema that drives
// aggregation and formatting downstream.
package networks

import (
	"fmt"
	"sort"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/util"
)

// Floor constants for the "ALL" range token.
var (
	floorBitcoin  = time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)
	floorEthereum = time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC)
	floorStaking  = time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)

	// floorProtocol is the generic floor for protocol-era data on chains
	// without their own constant.
	floorProtocol = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
)

var networks = []domain.Network{
	{
		ID:          "bitcoin",
		Name:        "Bitcoin",
		Symbol:      "BTC",
		CoinGeckoID: "bitcoin",
		LlamaChain:  "Bitcoin",
		Floor:       floorBitcoin,
	},
	{
		ID:          "ethereum",
		Name:        "Ethereum",
		Symbol:      "ETH",
		CoinGeckoID: "ethereum",
		LlamaChain:  "Ethereum",
		Floor:       floorEthereum,
	},
	{
		ID:          "avalanche",
		Name:        "Avalanche",
		Symbol:      "AVAX",
		CoinGeckoID: "avalanche-2",
		LlamaChain:  "Avalanche",
		Floor:       floorProtocol,
	},
	{
		ID:          "solana",
		Name:        "Solana",
		Symbol:      "SOL",
		CoinGeckoID: "solana",
		LlamaChain:  "Solana",
		Floor:       floorProtocol,
	},
	{
		ID:          "polygon",
		Name:        "Polygon",
		Symbol:      "POL",
		CoinGeckoID: "matic-network",
		LlamaChain:  "Polygon",
		Floor:       floorProtocol,
	},
}

var metrics = []domain.Metric{
	{
		ID:          "price",
		Name:        "Price",
		Description: "Daily asset price in USD",
		Fields:      []domain.FieldSpec{{Name: "price", Kind: domain.KindAverage, Unit: domain.UnitPrice}},
		Source:      "supabase",
		Fallback:    "coingecko",
	},
	{
		ID:          "market-cap",
		Name:        "Market Cap",
		Description: "Total market capitalization in USD",
		Fields:      []domain.FieldSpec{{Name: "market_cap", Kind: domain.KindAverage, Unit: domain.UnitCurrency}},
		Source:      "supabase",
		Fallback:    "coingecko",
	},
	{
		ID:          "volume",
		Name:        "Trading Volume",
		Description: "Daily traded volume in USD",
		Fields:      []domain.FieldSpec{{Name: "volume", Kind: domain.KindSum, Unit: domain.UnitCurrency}},
		Source:      "supabase",
		Fallback:    "coingecko",
	},
	{
		ID:          "tvl",
		Name:        "Total Value Locked",
		Description: "Value locked in protocols on the chain",
		Fields:      []domain.FieldSpec{{Name: "tvl", Kind: domain.KindAverage, Unit: domain.UnitCurrency}},
		Source:      "supabase",
		Fallback:    "defillama",
	},
	{
		ID:          "tx-count",
		Name:        "Transactions",
		Description: "Daily transaction count",
		Fields:      []domain.FieldSpec{{Name: "tx_count", Kind: domain.KindSum, Unit: domain.UnitCount}},
		Source:      "supabase",
	},
	{
		ID:          "active-addresses",
		Name:        "Active Addresses",
		Description: "Distinct addresses active per day",
		Fields:      []domain.FieldSpec{{Name: "active_addresses", Kind: domain.KindSum, Unit: domain.UnitCount}},
		Source:      "supabase",
	},
	{
		ID:          "active-senders",
		Name:        "Active Senders",
		Description: "Distinct sending addresses per day",
		Fields:      []domain.FieldSpec{{Name: "active_senders", Kind: domain.KindSum, Unit: domain.UnitCount}},
		Source:      "supabase",
	},
	{
		ID:          "fees-paid",
		Name:        "Fees Paid",
		Description: "Total fees paid per day in USD",
		Fields:      []domain.FieldSpec{{Name: "fees_paid", Kind: domain.KindSum, Unit: domain.UnitCurrency}},
		Source:      "supabase",
	},
	{
		ID:          "gas-used",
		Name:        "Gas Used",
		Description: "Total gas consumed per day",
		Fields:      []domain.FieldSpec{{Name: "gas_used", Kind: domain.KindSum, Unit: domain.UnitCount}},
		Source:      "supabase",
	},
	{
		ID:          "stablecoin-supply",
		Name:        "Stablecoin Supply",
		Description: "Circulating stablecoin value on the chain",
		Fields: []domain.FieldSpec{
			{Name: "circulating", Kind: domain.KindAverage, Unit: domain.UnitCurrency},
			{Name: "bridged", Kind: domain.KindAverage, Unit: domain.UnitCurrency},
		},
		Source:   "supabase",
		Fallback: "llama-stables",
	},
	{
		ID:          "staking-ratio",
		Name:        "Staking Ratio",
		Description: "Share of eligible supply staked",
		Fields:      []domain.FieldSpec{{Name: "staking_ratio", Kind: domain.KindAverage, Unit: domain.UnitRatio}},
		Floor:       floorStaking,
		Source:      "supabase",
	},
}

// metricNetworks restricts a metric to specific networks. Metrics absent
// from this map are available on every network.
var metricNetworks = map[string][]string{
	"staking-ratio": {"ethereum"},
	"gas-used":      {"ethereum", "avalanche", "polygon"},
}

// Lookup returns the network with the given ID.
func Lookup(id string) (domain.Network, error) {
	key := util.NormalizeKey(id)
	for _, n := range networks {
		if n.ID == key {
			return n, nil
		}
	}
	return domain.Network{}, fmt.Errorf("networks: unknown network %q", id)
}

// List returns all supported networks sorted by ID.
func List() []domain.Network {
	out := make([]domain.Network, len(networks))
	copy(out, networks)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupMetric returns the metric with the given ID.
func LookupMetric(id string) (domain.Metric, error) {
	key := util.NormalizeKey(id)
	for _, m := range metrics {
		if m.ID == key {
			return m, nil
		}
	}
	return domain.Metric{}, fmt.Errorf("networks: unknown metric %q", id)
}

// Metrics returns every known metric sorted by ID.
func Metrics() []domain.Metric {
	out := make([]domain.Metric, len(metrics))
	copy(out, metrics)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MetricsFor returns the metrics available on the given network, sorted
// by ID.
func MetricsFor(networkID string) []domain.Metric {
	key := util.NormalizeKey(networkID)
	var out []domain.Metric
	for _, m := range metrics {
		if allowed, ok := metricNetworks[m.ID]; ok && !containsKey(allowed, key) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Supports reports whether the metric is available on the network.
func Supports(networkID, metricID string) bool {
	allowed, ok := metricNetworks[util.NormalizeKey(metricID)]
	if !ok {
		return true
	}
	return containsKey(allowed, util.NormalizeKey(networkID))
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
