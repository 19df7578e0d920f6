package domain

import "context"

// SeriesQuery identifies one time-series fetch: which metric of which
// network, over which resolved window.
type SeriesQuery struct {
	Network Network
	Metric  Metric
	Window  RangeWindow
}

// DistributionQuery identifies one share-of-total fetch, e.g. the
// circulating supply split across stablecoins on a chain.
type DistributionQuery struct {
	Network Network
	// By names the category dimension, e.g. "stablecoin" or "protocol".
	By     string
	Window RangeWindow
}

// Source fetches raw time-series rows from one remote backend. Rows are
// returned ascending by timestamp and already sliced to the query window;
// sources without native range filtering re-filter client-side.
type Source interface {
	GetDisplayName() string
	FetchSeries(ctx context.Context, query SeriesQuery) ([]RawRow, error)
}

// DistributionSource is implemented by sources that can also report a
// categorical breakdown for share charts.
type DistributionSource interface {
	FetchDistribution(ctx context.Context, query DistributionQuery) ([]RawRow, error)
}
