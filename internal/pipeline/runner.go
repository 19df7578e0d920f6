// Package pipeline orchestrates the fetch/aggregate flow that every
// surface (CLI commands, dashboard, HTTP API) shares.
//
// The Runner type resolves a range token to a concrete window, fetches
// raw rows from the metric's primary source with retry, falls back to
// the secondary source when the primary errors or comes back empty,
// and buckets the rows into a chartable series. Surfaces construct a
// Runner once and call RunSeries or RunDistribution rather than talking
// to sources directly.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yashh-d/chainpulse/internal/aggregate"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/retry"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"
	"github.com/yashh-d/chainpulse/internal/sources"
	"github.com/yashh-d/chainpulse/internal/timerange"
)

const (
	// fetchTimeout bounds a single source call, not the whole run: a
	// primary timeout still leaves room for the fallback.
	fetchTimeout = 30 * time.Second

	// fetchAttempts is how many times a single source is tried before
	// the runner gives up on it and consults the fallback.
	fetchAttempts = 2
)

// SnapshotSourceName is reported as Result.SourceName when data was
// served from the local snapshot cache instead of a remote source.
const SnapshotSourceName = "snapshot cache"

// breakdown maps a categorical dimension to the source that can report
// it and the row fields holding the label and value.
type breakdown struct {
	source     string
	labelField string
	valueField string
}

var breakdowns = map[string]breakdown{
	"protocol":   {source: "supabase", labelField: "protocol", valueField: "tvl"},
	"stablecoin": {source: "llama-stables", labelField: "stablecoin", valueField: "value"},
}

// Breakdowns returns the supported distribution dimensions, sorted.
func Breakdowns() []string {
	out := make([]string, 0, len(breakdowns))
	for by := range breakdowns {
		out = append(out, by)
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of one series run: the raw rows, the bucketed
// points, and the single-field series charts draw from, plus enough
// provenance to tell the user where the data came from.
type Result struct {
	Network    domain.Network
	Metric     domain.Metric
	Window     domain.RangeWindow
	RangeToken string

	Rows       []domain.RawRow
	Aggregated []domain.AggregatedPoint
	Series     domain.Series

	// SourceName is the display name of the source that answered.
	// Fallback is true when it was the metric's fallback source.
	SourceName string
	Fallback   bool

	Duration time.Duration
}

// DistributionResult is the outcome of one categorical breakdown run.
type DistributionResult struct {
	Network    domain.Network
	By         string
	Window     domain.RangeWindow
	RangeToken string

	Slices []domain.DistributionSlice

	SourceName string
	Duration   time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides the per-source-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithRetryConfig overrides the retry policy applied to each source call.
func WithRetryConfig(cfg retry.Config) Option {
	return func(r *Runner) {
		r.retry = cfg
	}
}

// WithSnapshots enables snapshot persistence: every successful series run
// is written through to the repository and every run is recorded in the
// sync history.
func WithSnapshots(repo snapstore.SnapshotRepository) Option {
	return func(r *Runner) {
		r.snaps = repo
	}
}

// WithResolver substitutes the range resolver, letting tests freeze the
// clock.
func WithResolver(resolver *timerange.Resolver) Option {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// WithOffline makes RunSeries read from the snapshot cache instead of
// remote sources. Requires WithSnapshots.
func WithOffline(offline bool) Option {
	return func(r *Runner) {
		r.offline = offline
	}
}

// Runner executes metric queries end to end. It is safe for concurrent
// use once constructed.
type Runner struct {
	store    auth.Store
	resolver *timerange.Resolver
	snaps    snapstore.SnapshotRepository
	timeout  time.Duration
	retry    retry.Config
	offline  bool
}

// New returns a Runner that resolves source credentials from store.
func New(store auth.Store, opts ...Option) *Runner {
	r := &Runner{
		store:    store,
		resolver: timerange.New(),
		timeout:  fetchTimeout,
		retry: retry.Config{
			MaxAttempts: fetchAttempts,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSeries fetches, aggregates, and shapes one metric of one network
// over the window named by rangeToken. An empty token resolves to the
// default range.
func (r *Runner) RunSeries(ctx context.Context, networkID, metricID, rangeToken string) (*Result, error) {
	started := time.Now()

	network, err := networks.Lookup(networkID)
	if err != nil {
		return nil, err
	}
	metric, err := networks.LookupMetric(metricID)
	if err != nil {
		return nil, err
	}
	if !networks.Supports(network.ID, metric.ID) {
		return nil, fmt.Errorf("pipeline: metric %q is not available on %s: %w", metric.ID, network.Name, domain.ErrNotFound)
	}

	window := r.resolver.ResolveMetric(rangeToken, network, metric)
	query := domain.SeriesQuery{Network: network, Metric: metric, Window: window}

	if r.offline {
		return r.runOffline(network, metric, window, rangeToken, started)
	}

	rows, sourceName, usedFallback, err := r.fetch(ctx, query)
	if err != nil {
		r.recordRun(network, metric, rangeToken, sourceName, usedFallback, 0, err, started)
		return nil, err
	}

	aggregated := aggregate.Bucket(rows, metric.Fields, window.Bucket)
	series := aggregate.SeriesFromAggregated(aggregated, network.ID, metric.ID, metric.PrimaryField().Name)

	result := &Result{
		Network:    network,
		Metric:     metric,
		Window:     window,
		RangeToken: rangeToken,
		Rows:       rows,
		Aggregated: aggregated,
		Series:     series,
		SourceName: sourceName,
		Fallback:   usedFallback,
		Duration:   time.Since(started),
	}

	r.snapshot(result)
	r.recordRun(network, metric, rangeToken, sourceName, usedFallback, len(rows), nil, started)

	return result, nil
}

// RunDistribution fetches a categorical breakdown (e.g. TVL by protocol)
// and folds it into display slices.
func (r *Runner) RunDistribution(ctx context.Context, networkID, by, rangeToken string) (*DistributionResult, error) {
	started := time.Now()

	network, err := networks.Lookup(networkID)
	if err != nil {
		return nil, err
	}
	spec, ok := breakdowns[by]
	if !ok {
		return nil, fmt.Errorf("pipeline: unknown breakdown %q (supported: %v): %w", by, Breakdowns(), domain.ErrNotFound)
	}

	window := r.resolver.Resolve(rangeToken, network)
	query := domain.DistributionQuery{Network: network, By: by, Window: window}

	source, err := sources.Get(spec.source, r.store)
	if err != nil {
		return nil, err
	}
	dist, ok := source.(domain.DistributionSource)
	if !ok {
		return nil, fmt.Errorf("pipeline: source %s cannot report distributions: %w", source.GetDisplayName(), domain.ErrNotFound)
	}

	var rows []domain.RawRow
	err = retry.Do(ctx, r.retry, retry.IsRetryable, func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		var fetchErr error
		rows, fetchErr = dist.FetchDistribution(callCtx, query)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	return &DistributionResult{
		Network:    network,
		By:         by,
		Window:     window,
		RangeToken: rangeToken,
		Slices:     aggregate.ToDistribution(rows, spec.labelField, spec.valueField, aggregate.DefaultThreshold),
		SourceName: source.GetDisplayName(),
		Duration:   time.Since(started),
	}, nil
}

// fetch tries the metric's primary source and, when it errors or returns
// nothing, the fallback. The fallback never masks a primary failure
// silently: if both fail, the primary's error is returned.
func (r *Runner) fetch(ctx context.Context, query domain.SeriesQuery) ([]domain.RawRow, string, bool, error) {
	primary, err := sources.Get(query.Metric.Source, r.store)
	if err != nil {
		return nil, query.Metric.Source, false, err
	}
	primaryName := primary.GetDisplayName()

	rows, primaryErr := r.fetchWithRetry(ctx, primary, query)
	if primaryErr == nil && len(rows) > 0 {
		return rows, primaryName, false, nil
	}
	if ctx.Err() != nil {
		return nil, primaryName, false, ctx.Err()
	}

	if query.Metric.Fallback == "" {
		// No fallback: an empty primary answer is a valid empty series.
		return rows, primaryName, false, primaryErr
	}

	fallback, err := sources.Get(query.Metric.Fallback, r.store)
	if err != nil {
		if primaryErr != nil {
			return nil, primaryName, false, primaryErr
		}
		return rows, primaryName, false, nil
	}

	fbRows, fbErr := r.fetchOnce(ctx, fallback, query)
	if fbErr != nil {
		if primaryErr != nil {
			return nil, primaryName, false, primaryErr
		}
		return rows, primaryName, false, nil
	}

	return fbRows, fallback.GetDisplayName(), true, nil
}

// fetchWithRetry wraps one source call in the retry policy, bounding
// each attempt by the configured timeout.
func (r *Runner) fetchWithRetry(ctx context.Context, source domain.Source, query domain.SeriesQuery) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	err := retry.Do(ctx, r.retry, retry.IsRetryable, func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		var fetchErr error
		rows, fetchErr = source.FetchSeries(callCtx, query)
		return fetchErr
	})
	return rows, err
}

// fetchOnce performs a single source call bounded by the configured
// timeout. Fallback sources get the timeout but no retries.
func (r *Runner) fetchOnce(ctx context.Context, source domain.Source, query domain.SeriesQuery) ([]domain.RawRow, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return source.FetchSeries(callCtx, query)
}

// runOffline serves a series run from the snapshot cache.
func (r *Runner) runOffline(network domain.Network, metric domain.Metric, window domain.RangeWindow, rangeToken string, started time.Time) (*Result, error) {
	if r.snaps == nil {
		return nil, fmt.Errorf("pipeline: offline mode requires a snapshot store")
	}

	points, err := r.snaps.LoadSeries(network.ID, metric.ID, window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Network:    network,
		Metric:     metric,
		Window:     window,
		RangeToken: rangeToken,
		Series:     domain.Series{Network: network.ID, Metric: metric.ID, Points: points},
		SourceName: SnapshotSourceName,
		Duration:   time.Since(started),
	}, nil
}

// snapshot writes a successful run's series through to the snapshot
// store. Persistence failures are swallowed so a broken local cache
// never blocks live data.
func (r *Runner) snapshot(result *Result) {
	if r.snaps == nil || len(result.Series.Points) == 0 {
		return
	}
	_, _ = r.snaps.UpsertSeries(result.Network.ID, result.Metric.ID, result.Series.Points)
}

// recordRun appends the run to the sync history when snapshots are on.
func (r *Runner) recordRun(network domain.Network, metric domain.Metric, rangeToken, sourceName string, usedFallback bool, rows int, runErr error, started time.Time) {
	if r.snaps == nil {
		return
	}

	run := &snapstore.SyncRun{
		Network:    network.ID,
		Metric:     metric.ID,
		RangeToken: rangeToken,
		Rows:       rows,
		Status:     snapstore.StatusSuccess,
		Duration:   time.Since(started),
		StartedAt:  started,
	}
	if usedFallback {
		run.Source = sourceName
	}
	if runErr != nil {
		run.Status = snapstore.StatusError
		run.ErrorMessage = runErr.Error()
	}

	_ = r.snaps.RecordSync(run)
}
