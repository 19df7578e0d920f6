package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
)

const (
	supabaseTimeout    = 30 * time.Second
	supabaseTokenStore = "supabase"
	supabasePageSize   = 1000

	dateLayout = "2006-01-02"
)

// Compile-time checks that SupabaseClient satisfies the source interfaces.
var (
	_ domain.Source             = (*SupabaseClient)(nil)
	_ domain.DistributionSource = (*SupabaseClient)(nil)
)

// SupabaseClient is the primary data source. It reads per-metric daily
// tables through the PostgREST interface of a hosted Supabase project and
// calls server-side functions for aggregated views.
// It uses a direct HTTP client rather than an SDK to keep the dependency
// tree light and the code consistent with the other sources.
type SupabaseClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

// NewSupabaseClient creates a SupabaseClient for the given project URL and
// service key.
func NewSupabaseClient(baseURL, apiKey string) *SupabaseClient {
	return &SupabaseClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: supabasePageSize,
		client:   &http.Client{Timeout: supabaseTimeout},
	}
}

// RegisterSupabase registers the Supabase source factory with the registry.
// The project URL comes from config, the API key from the keyring.
func RegisterSupabase() {
	Register("supabase", func(store auth.Store) (domain.Source, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("supabase url not configured (run 'chainpulse config set supabase-url <url>'): %w", domain.ErrNoCredentials)
		}
		key, err := store.GetToken(supabaseTokenStore)
		if err != nil {
			return nil, fmt.Errorf("supabase key not found (run 'chainpulse auth login supabase'): %w", domain.ErrNoCredentials)
		}
		return NewSupabaseClient(cfg.SupabaseURL, key), nil
	})
}

// GetDisplayName returns the human-readable source name.
func (c *SupabaseClient) GetDisplayName() string {
	return "Supabase"
}

// --- API request/response types ---

// psError is the PostgREST error body.
type psError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// rpcWindowParams is the parameter shape shared by the server-side
// aggregation functions.
type rpcWindowParams struct {
	Protocols []string `json:"protocols"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Interval  string   `json:"interval"`
}

// --- HTTP helpers ---

// doJSON performs a request against the PostgREST API and decodes the JSON
// response into out. Non-2xx responses are mapped to domain sentinels.
func (c *SupabaseClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("supabase: failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr psError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return statusError("supabase", resp.StatusCode, apiErr.Message, resp.Header)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: failed to decode response: %w", err)
	}
	return nil
}

// RPC invokes a PostgREST server-side function under /rest/v1/rpc.
func (c *SupabaseClient) RPC(ctx context.Context, fn string, params any, out any) error {
	return c.doJSON(ctx, http.MethodPost, "/rest/v1/rpc/"+fn, params, out)
}

// --- Source implementation ---

// FetchSeries pages through the metric's daily table until a page comes
// back short. Pages are requested as [page*pageSize, (page+1)*pageSize)
// with an ascending date order, so the loop is bounded only by data
// exhaustion.
func (c *SupabaseClient) FetchSeries(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	table := metricTable(query.Metric)
	columns := selectColumns(query.Metric)

	var all []domain.RawRow
	for page := 0; ; page++ {
		path := fmt.Sprintf("/rest/v1/%s?select=%s&network=eq.%s&date=gte.%s&date=lt.%s&order=date.asc&limit=%d&offset=%d",
			table, columns, query.Network.ID,
			query.Window.Start.Format(dateLayout), query.Window.End.Format(dateLayout),
			c.pageSize, page*c.pageSize)

		var rows []map[string]any
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &rows); err != nil {
			return nil, fmt.Errorf("failed to fetch %s/%s: %w", query.Network.ID, query.Metric.ID, err)
		}

		for _, row := range rows {
			ts, ok := rowDate(row["date"])
			if !ok {
				continue
			}
			delete(row, "date")
			delete(row, "network")
			all = append(all, domain.RawRow{Timestamp: ts, Values: row})
		}

		// A short (or empty) page means the table is exhausted.
		if len(rows) < c.pageSize {
			break
		}
	}
	return all, nil
}

// FetchDistribution returns share-of-total rows from a server-side
// aggregation function. Only the protocol breakdown lives here; the
// stablecoin breakdown is served by the DefiLlama stablecoins source.
func (c *SupabaseClient) FetchDistribution(ctx context.Context, query domain.DistributionQuery) ([]domain.RawRow, error) {
	if query.By != "protocol" {
		return nil, fmt.Errorf("supabase has no %q breakdown: %w", query.By, domain.ErrNotFound)
	}

	params := rpcWindowParams{
		Protocols: []string{},
		StartDate: query.Window.Start.Format(dateLayout),
		EndDate:   query.Window.End.Format(dateLayout),
		Interval:  bucketInterval(query.Window.Bucket),
	}

	var rows []map[string]any
	if err := c.RPC(ctx, "top_protocols_by_tvl", params, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch protocol breakdown for %s: %w", query.Network.ID, err)
	}

	out := make([]domain.RawRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.RawRow{Values: row})
	}
	return out, nil
}

// --- Conversion helpers ---

// metricTable maps a metric ID to its daily table name.
func metricTable(metric domain.Metric) string {
	return "daily_" + strings.ReplaceAll(metric.ID, "-", "_")
}

// selectColumns builds the PostgREST select list: the date column plus
// every field the metric's schema declares.
func selectColumns(metric domain.Metric) string {
	cols := make([]string, 0, len(metric.Fields)+1)
	cols = append(cols, "date")
	for _, f := range metric.Fields {
		cols = append(cols, f.Name)
	}
	return strings.Join(cols, ",")
}

// bucketInterval maps a bucket granularity to the interval keyword the
// server-side functions accept.
func bucketInterval(b domain.Bucket) string {
	switch b {
	case domain.BucketWeek:
		return "week"
	case domain.BucketMonth:
		return "month"
	default:
		return "day"
	}
}
