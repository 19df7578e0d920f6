package domain

import "time"

// FieldKind declares how a field aggregates when rows are grouped into a
// coarser time bucket.
type FieldKind string

const (
	// KindSum is for absolute counters partitioned by sub-period
	// (transactions, fees paid, gas used): bucket values are summed.
	KindSum FieldKind = "sum"
	// KindAverage is for rate-like or level fields (price, TVL, ratios):
	// bucket values are averaged.
	KindAverage FieldKind = "average"
)

// Unit declares how a field's values are formatted for display.
type Unit string

const (
	// UnitCurrency formats with a $ prefix and K/M/B/T suffixes.
	UnitCurrency Unit = "currency"
	// UnitPrice is currency with extra precision below 1 for small
	// asset prices.
	UnitPrice Unit = "price"
	// UnitCount formats with K/M/B/T suffixes and no prefix.
	UnitCount Unit = "count"
	// UnitRatio formats as a percentage.
	UnitRatio Unit = "ratio"
)

// FieldSpec is the declared schema for one value field of a metric.
// Aggregation and formatting decisions are driven by this schema rather
// than by matching on field names.
type FieldSpec struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
	Unit Unit      `json:"unit"`
}

// Metric describes one chartable measurement of a network.
type Metric struct {
	// ID is the canonical lowercase identifier, e.g. "tx-count".
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Fields is the value schema. The first field is the primary series
	// shown by single-line charts; additional fields ride along in
	// aggregated points.
	Fields []FieldSpec `json:"fields"`

	// Floor, when non-zero, overrides the network floor for the "ALL"
	// range token (e.g. staking data starts at the beacon deposit
	// contract, not the chain genesis).
	Floor time.Time `json:"floor,omitempty"`

	// Source is the registered name of the primary data source.
	// Fallback, when non-empty, names the source consulted if the
	// primary errors or returns no rows.
	Source   string `json:"source"`
	Fallback string `json:"fallback,omitempty"`
}

// PrimaryField returns the first declared field, or a zero FieldSpec if
// the metric has no schema.
func (m Metric) PrimaryField() FieldSpec {
	if len(m.Fields) == 0 {
		return FieldSpec{}
	}
	return m.Fields[0]
}

// Point is a single data point in a time series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is an ordered sequence of points for one metric of one network,
// ascending by timestamp. Built fresh per fetch; never mutated after.
type Series struct {
	Network string  `json:"network"`
	Metric  string  `json:"metric"`
	Points  []Point `json:"points"`
}

// RawRow is one untyped record from a tabular source. The timestamp is
// parsed at the source edge (each source knows its own date encoding);
// values stay untyped because upstream rows mix numbers, numeric strings
// with thousands separators, and nulls.
type RawRow struct {
	Timestamp time.Time      `json:"timestamp"`
	Values    map[string]any `json:"values"`
}

// AggregatedPoint is one bucketed row after grouping by day, week, or
// month, holding every field's aggregated value for that bucket.
type AggregatedPoint struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// DistributionSlice is one category's share of a whole for share charts.
// After small-slice merging, percentages across a distribution sum to
// approximately 100.
type DistributionSlice struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}
