package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
)

const (
	coingeckoBaseURL    = "https://api.coingecko.com/api/v3"
	coingeckoTimeout    = 30 * time.Second
	coingeckoTokenStore = "coingecko"

	// coingeckoMaxDays is the span beyond which the whole history is
	// requested with days=max instead of a day count.
	coingeckoMaxDays = 3650
)

// Compile-time check that CoinGeckoClient satisfies domain.Source.
var _ domain.Source = (*CoinGeckoClient)(nil)

// CoinGeckoClient is the fallback source for market metrics (price, market
// cap, trading volume). The free endpoint needs no key; a demo key is sent
// when one is stored.
type CoinGeckoClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a CoinGeckoClient. apiKey may be empty.
func NewCoinGeckoClient(apiKey string) *CoinGeckoClient {
	return &CoinGeckoClient{
		apiKey:  apiKey,
		baseURL: coingeckoBaseURL,
		client:  &http.Client{Timeout: coingeckoTimeout},
	}
}

// RegisterCoinGecko registers the CoinGecko source factory with the
// registry. A missing key is fine; anything else from the keyring is not.
func RegisterCoinGecko() {
	Register("coingecko", func(store auth.Store) (domain.Source, error) {
		key, err := store.GetToken(coingeckoTokenStore)
		if err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
			return nil, fmt.Errorf("coingecko auth: %w", err)
		}
		return NewCoinGeckoClient(key), nil
	})
}

// GetDisplayName returns the human-readable source name.
func (c *CoinGeckoClient) GetDisplayName() string {
	return "CoinGecko"
}

// --- API response types ---

// cgMarketChart is the /coins/{id}/market_chart response: each series is a
// list of [unix_ms, value] pairs.
type cgMarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// series picks the pair list backing the given metric.
func (m cgMarketChart) series(metricID string) ([][]float64, bool) {
	switch metricID {
	case "price":
		return m.Prices, true
	case "market-cap":
		return m.MarketCaps, true
	case "volume":
		return m.TotalVolumes, true
	}
	return nil, false
}

// cgAPIError covers the two error body shapes the API produces.
type cgAPIError struct {
	Error  string `json:"error"`
	Status struct {
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func (e cgAPIError) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Status.ErrorMessage
}

// --- HTTP helpers ---

func (c *CoinGeckoClient) doJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("coingecko: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr cgAPIError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return statusError("coingecko", resp.StatusCode, apiErr.message(), resp.Header)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coingecko: failed to decode response: %w", err)
	}
	return nil
}

// --- Source implementation ---

// FetchSeries loads a market chart for the network's listing and maps the
// requested metric's pair list into raw rows. The endpoint has no start/end
// parameters, so the window is re-applied client-side.
func (c *CoinGeckoClient) FetchSeries(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	if query.Network.CoinGeckoID == "" {
		return nil, fmt.Errorf("coingecko has no listing for network %q: %w", query.Network.ID, domain.ErrNotFound)
	}

	days := "max"
	if d := query.Window.Days(); d <= coingeckoMaxDays {
		days = strconv.Itoa(d)
	}

	path := fmt.Sprintf("/coins/%s/market_chart?vs_currency=usd&days=%s", query.Network.CoinGeckoID, days)
	var chart cgMarketChart
	if err := c.doJSON(ctx, path, &chart); err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", query.Network.ID, query.Metric.ID, err)
	}

	pairs, ok := chart.series(query.Metric.ID)
	if !ok {
		return nil, fmt.Errorf("coingecko has no series for metric %q: %w", query.Metric.ID, domain.ErrNotFound)
	}

	field := query.Metric.PrimaryField()
	var rows []domain.RawRow
	for _, pair := range pairs {
		if len(pair) != 2 {
			continue
		}
		ts := time.UnixMilli(int64(pair[0])).UTC()
		if !query.Window.Contains(ts) {
			continue
		}
		rows = append(rows, domain.RawRow{
			Timestamp: ts,
			Values:    map[string]any{field.Name: pair[1]},
		})
	}
	return rows, nil
}
