package snapstore

import "time"

// SyncRun records one completed cache refresh for a (network, metric) pair.
// Runs are kept as history so the cache commands can show when each series
// was last refreshed and which source served it.
type SyncRun struct {
	// ID is a generated UUID identifying the run.
	ID string

	// Network is the network slug, e.g. "avalanche".
	Network string

	// Metric is the metric slug, e.g. "tx-count".
	Metric string

	// RangeToken is the range the sync covered, e.g. "1Y" or "ALL".
	RangeToken string

	// Source names the data source that served the rows. When the primary
	// source failed and a fallback answered, this is the fallback's name.
	Source string

	// Rows is the number of points written by the run.
	Rows int

	// Status is the outcome: "success" or "error".
	Status string

	// ErrorMessage contains a human-readable explanation when Status is "error".
	ErrorMessage string

	// Duration is the wall-clock time the sync took.
	Duration time.Duration

	// StartedAt is when the sync began.
	StartedAt time.Time
}

// Sync run status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SnapshotStat summarizes the cached points for one (network, metric) pair.
type SnapshotStat struct {
	Network string
	Metric  string
	Points  int
	Oldest  time.Time
	Newest  time.Time
}
