package domain

import "time"

// Network represents a blockchain network whose metrics can be charted.
type Network struct {
	// ID is the canonical lowercase identifier used in commands and
	// storage, e.g. "bitcoin", "avalanche".
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`

	// CoinGeckoID is the coin identifier for the market-data fallback
	// API, e.g. "avalanche-2". Empty if the network has no listing.
	CoinGeckoID string `json:"coingecko_id,omitempty"`

	// LlamaChain is the chain identifier for the TVL and stablecoin
	// APIs, e.g. "Avalanche". Empty if not tracked there.
	LlamaChain string `json:"llama_chain,omitempty"`

	// Floor is the hardcoded start date used when resolving the "ALL"
	// range token. A deliberate constant (roughly the chain's genesis),
	// not a data-driven first-observation date.
	Floor time.Time `json:"floor"`
}
