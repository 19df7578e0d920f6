package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
)

const (
	duneBaseURL      = "https://api.dune.com/api/v1"
	duneTimeout      = 30 * time.Second
	duneTokenStore   = "dune"
	dunePollInterval = 2 * time.Second
)

// Dune execution states. Completed is the only state with results;
// the failure states are terminal.
const (
	duneStateCompleted = "QUERY_STATE_COMPLETED"
	duneStateFailed    = "QUERY_STATE_FAILED"
	duneStateCancelled = "QUERY_STATE_CANCELLED"
	duneStateExpired   = "QUERY_STATE_EXPIRED"
)

// Compile-time check that DuneClient satisfies domain.Source.
var _ domain.Source = (*DuneClient)(nil)

// ecosystemQueries maps an ecosystem slug to its saved Dune query IDs.
var ecosystemQueries = map[string][]int{
	"avalanche": {4488181, 4520939},
	"polygon":   {4429367, 4522117, 1480029},
	"optimism":  {4488197},
	"injective": {4521597},
	"sei":       {4488192, 4522139},
	"core":      {4497145, 4524092, 4524322, 4497658},
}

// Ecosystems returns the ecosystem slugs with saved queries, sorted.
func Ecosystems() []string {
	names := make([]string, 0, len(ecosystemQueries))
	for name := range ecosystemQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QueriesFor returns the saved query IDs for an ecosystem (nil if none).
func QueriesFor(ecosystem string) []int {
	return ecosystemQueries[ecosystem]
}

// DuneClient runs saved Dune Analytics queries through the async
// execute/status/results protocol.
type DuneClient struct {
	apiKey  string
	baseURL string
	poll    time.Duration
	client  *http.Client
}

// NewDuneClient creates a DuneClient with the given API key.
func NewDuneClient(apiKey string) *DuneClient {
	return &DuneClient{
		apiKey:  apiKey,
		baseURL: duneBaseURL,
		poll:    dunePollInterval,
		client:  &http.Client{Timeout: duneTimeout},
	}
}

// RegisterDune registers the Dune source factory with the registry.
func RegisterDune() {
	Register("dune", func(store auth.Store) (domain.Source, error) {
		key, err := store.GetToken(duneTokenStore)
		if err != nil {
			return nil, fmt.Errorf("dune api key not found (run 'chainpulse auth login dune'): %w", domain.ErrNoCredentials)
		}
		return NewDuneClient(key), nil
	})
}

// GetDisplayName returns the human-readable source name.
func (c *DuneClient) GetDisplayName() string {
	return "Dune"
}

// --- API response types ---

type duneExecution struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type duneResults struct {
	State  string `json:"state"`
	Result struct {
		Rows []map[string]any `json:"rows"`
	} `json:"result"`
}

type duneAPIError struct {
	Error string `json:"error"`
}

// --- HTTP helpers ---

func (c *DuneClient) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("dune: failed to build request: %w", err)
	}
	req.Header.Set("X-DUNE-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("dune: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr duneAPIError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return statusError("dune", resp.StatusCode, apiErr.Error, resp.Header)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dune: failed to decode response: %w", err)
	}
	return nil
}

// --- Async query protocol ---

// Execute starts a saved query run and returns its execution ID.
func (c *DuneClient) Execute(ctx context.Context, queryID int) (string, error) {
	var out duneExecution
	path := fmt.Sprintf("/query/%d/execute", queryID)
	if err := c.doJSON(ctx, http.MethodPost, path, &out); err != nil {
		return "", fmt.Errorf("failed to execute query %d: %w", queryID, err)
	}
	return out.ExecutionID, nil
}

// Status returns the current execution state.
func (c *DuneClient) Status(ctx context.Context, executionID string) (string, error) {
	var out duneExecution
	path := "/execution/" + executionID + "/status"
	if err := c.doJSON(ctx, http.MethodGet, path, &out); err != nil {
		return "", fmt.Errorf("failed to get status of execution %s: %w", executionID, err)
	}
	return out.State, nil
}

// Results returns the rows of a completed execution.
func (c *DuneClient) Results(ctx context.Context, executionID string) ([]map[string]any, error) {
	var out duneResults
	path := "/execution/" + executionID + "/results"
	if err := c.doJSON(ctx, http.MethodGet, path, &out); err != nil {
		return nil, fmt.Errorf("failed to get results of execution %s: %w", executionID, err)
	}
	return out.Result.Rows, nil
}

// Run executes a saved query, polls its status until it reaches a terminal
// state, and fetches the rows. Polling stops when ctx is done.
func (c *DuneClient) Run(ctx context.Context, queryID int) ([]map[string]any, error) {
	executionID, err := c.Execute(ctx, queryID)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		state, err := c.Status(ctx, executionID)
		if err != nil {
			return nil, err
		}
		switch state {
		case duneStateCompleted:
			return c.Results(ctx, executionID)
		case duneStateFailed, duneStateCancelled, duneStateExpired:
			return nil, fmt.Errorf("dune: query %d ended in state %s", queryID, state)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// --- Source implementation ---

// dateColumns are the column names Dune queries use for their time axis.
var dateColumns = []string{"day", "date", "block_date", "block_time", "time", "dt"}

// FetchSeries runs the first saved query for the network's ecosystem and
// converts date-keyed rows into raw series rows.
func (c *DuneClient) FetchSeries(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	ids := ecosystemQueries[query.Network.ID]
	if len(ids) == 0 {
		return nil, fmt.Errorf("dune has no saved queries for network %q: %w", query.Network.ID, domain.ErrNotFound)
	}

	rows, err := c.Run(ctx, ids[0])
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s via dune: %w", query.Network.ID, err)
	}

	var out []domain.RawRow
	for _, row := range rows {
		ts, ok := findRowDate(row)
		if !ok || !query.Window.Contains(ts) {
			continue
		}
		out = append(out, domain.RawRow{Timestamp: ts, Values: row})
	}
	return out, nil
}

// findRowDate locates a date-like column in a Dune result row.
func findRowDate(row map[string]any) (time.Time, bool) {
	for _, col := range dateColumns {
		if v, ok := row[col]; ok {
			if ts, ok := rowDate(v); ok {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
