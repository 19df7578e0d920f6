package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/swrcache"
)

const (
	llamaBaseURL        = "https://api.llama.fi"
	llamaStablesBaseURL = "https://stablecoins.llama.fi"
	llamaTimeout        = 30 * time.Second
)

// Compile-time checks that the DefiLlama clients satisfy the source interfaces.
var (
	_ domain.Source             = (*LlamaClient)(nil)
	_ domain.Source             = (*LlamaStablesClient)(nil)
	_ domain.DistributionSource = (*LlamaStablesClient)(nil)
)

// LlamaClient is the fallback source for chain TVL, backed by the public
// DefiLlama API. No credentials are required.
type LlamaClient struct {
	baseURL string
	client  *http.Client
}

// NewLlamaClient creates a LlamaClient.
func NewLlamaClient() *LlamaClient {
	return &LlamaClient{
		baseURL: llamaBaseURL,
		client:  &http.Client{Timeout: llamaTimeout},
	}
}

// RegisterDefiLlama registers the DefiLlama TVL source factory with the
// registry.
func RegisterDefiLlama() {
	Register("defillama", func(auth.Store) (domain.Source, error) {
		return NewLlamaClient(), nil
	})
}

// GetDisplayName returns the human-readable source name.
func (c *LlamaClient) GetDisplayName() string {
	return "DefiLlama"
}

// llamaTVLPoint is one row of the historical chain TVL response.
type llamaTVLPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

// FetchSeries returns the chain's TVL history. The endpoint serves the full
// history unconditionally, so the window is applied client-side.
func (c *LlamaClient) FetchSeries(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	if query.Metric.ID != "tvl" {
		return nil, fmt.Errorf("defillama has no series for metric %q: %w", query.Metric.ID, domain.ErrNotFound)
	}

	var points []llamaTVLPoint
	url := c.baseURL + "/v2/historicalChainTvl/" + query.Network.LlamaChain
	if err := getJSON(ctx, c.client, url, &points); err != nil {
		return nil, fmt.Errorf("failed to fetch %s/tvl: %w", query.Network.ID, err)
	}

	var rows []domain.RawRow
	for _, p := range points {
		ts := time.Unix(p.Date, 0).UTC()
		if !query.Window.Contains(ts) {
			continue
		}
		rows = append(rows, domain.RawRow{
			Timestamp: ts,
			Values:    map[string]any{"tvl": p.TVL},
		})
	}
	return rows, nil
}

// LlamaStablesClient serves stablecoin supply series and the stablecoin
// distribution from the DefiLlama stablecoins API. The full asset listing
// is slow and changes rarely, so it sits behind the stale-while-revalidate
// file cache.
type LlamaStablesClient struct {
	baseURL string
	cache   *swrcache.Cache
	client  *http.Client
}

// NewLlamaStablesClient creates a LlamaStablesClient.
func NewLlamaStablesClient() *LlamaStablesClient {
	return &LlamaStablesClient{
		baseURL: llamaStablesBaseURL,
		cache:   swrcache.NewDefault(),
		client:  &http.Client{Timeout: llamaTimeout},
	}
}

// RegisterLlamaStables registers the stablecoins source factory with the
// registry.
func RegisterLlamaStables() {
	Register("llama-stables", func(auth.Store) (domain.Source, error) {
		return NewLlamaStablesClient(), nil
	})
}

// GetDisplayName returns the human-readable source name.
func (c *LlamaStablesClient) GetDisplayName() string {
	return "DefiLlama Stablecoins"
}

// llamaStablePoint is one row of the stablecoincharts response. Date is a
// unix-seconds value that the API serves as a string.
type llamaStablePoint struct {
	Date                json.Number        `json:"date"`
	TotalCirculatingUSD map[string]float64 `json:"totalCirculatingUSD"`
	TotalBridgedToUSD   map[string]float64 `json:"totalBridgedToUSD"`
}

// llamaStableAsset is one entry of the full stablecoin listing.
type llamaStableAsset struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	ChainCirculating map[string]struct {
		Current map[string]float64 `json:"current"`
	} `json:"chainCirculating"`
}

// FetchSeries returns the chain's aggregate stablecoin supply history with
// circulating and bridged dollar values per day.
func (c *LlamaStablesClient) FetchSeries(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	chain := strings.ToLower(query.Network.LlamaChain)

	var points []llamaStablePoint
	url := c.baseURL + "/stablecoincharts/" + chain
	if err := getJSON(ctx, c.client, url, &points); err != nil {
		return nil, fmt.Errorf("failed to fetch %s/stablecoin-supply: %w", query.Network.ID, err)
	}

	var rows []domain.RawRow
	for _, p := range points {
		secs, err := p.Date.Int64()
		if err != nil {
			continue
		}
		ts := time.Unix(secs, 0).UTC()
		if !query.Window.Contains(ts) {
			continue
		}
		rows = append(rows, domain.RawRow{
			Timestamp: ts,
			Values: map[string]any{
				"circulating": p.TotalCirculatingUSD["peggedUSD"],
				"bridged":     p.TotalBridgedToUSD["peggedUSD"],
			},
		})
	}
	return rows, nil
}

// FetchDistribution returns each stablecoin's current circulating value on
// the chain, for the share-of-total breakdown.
func (c *LlamaStablesClient) FetchDistribution(ctx context.Context, query domain.DistributionQuery) ([]domain.RawRow, error) {
	if query.By != "stablecoin" {
		return nil, fmt.Errorf("llama-stables has no %q breakdown: %w", query.By, domain.ErrNotFound)
	}

	assets, err := c.stablecoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stablecoin breakdown for %s: %w", query.Network.ID, err)
	}

	var rows []domain.RawRow
	for _, asset := range assets {
		circulating, ok := asset.ChainCirculating[query.Network.LlamaChain]
		if !ok {
			continue
		}
		value := circulating.Current["peggedUSD"]
		if value <= 0 {
			continue
		}
		rows = append(rows, domain.RawRow{
			Values: map[string]any{"stablecoin": asset.Symbol, "value": value},
		})
	}
	return rows, nil
}

// stablecoins returns the full asset listing through the SWR cache.
func (c *LlamaStablesClient) stablecoins(ctx context.Context) ([]llamaStableAsset, error) {
	return swrcache.GetOrFetch(c.cache, ctx, "llama_stablecoins", func(ctx context.Context) ([]llamaStableAsset, error) {
		var out struct {
			PeggedAssets []llamaStableAsset `json:"peggedAssets"`
		}
		if err := getJSON(ctx, c.client, c.baseURL+"/stablecoins?includePrices=false", &out); err != nil {
			return nil, err
		}
		return out.PeggedAssets, nil
	})
}

// getJSON performs a GET against a public DefiLlama endpoint and decodes
// the JSON response into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("defillama: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("defillama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return statusError("defillama", resp.StatusCode, string(body), resp.Header)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("defillama: failed to decode response: %w", err)
	}
	return nil
}
