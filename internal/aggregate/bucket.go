package aggregate

import (
	"sort"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
)

// Bucket groups raw rows into the given granularity, aggregating each
// declared field by its schema kind: sum fields (absolute counters
// partitioned by sub-period) are summed across the bucket, average
// fields (rates, levels, ratios) are averaged. Buckets come back
// ascending by date.
func Bucket(rows []domain.RawRow, fields []domain.FieldSpec, granularity domain.Bucket) []domain.AggregatedPoint {
	if len(rows) == 0 {
		return nil
	}

	type accumulator struct {
		sums   map[string]float64
		counts map[string]int
	}

	buckets := make(map[time.Time]*accumulator)
	var order []time.Time

	for _, row := range rows {
		key := bucketStart(row.Timestamp, granularity)
		acc, ok := buckets[key]
		if !ok {
			acc = &accumulator{
				sums:   make(map[string]float64, len(fields)),
				counts: make(map[string]int, len(fields)),
			}
			buckets[key] = acc
			order = append(order, key)
		}
		for _, f := range fields {
			acc.sums[f.Name] += CoerceValue(row.Values[f.Name])
			acc.counts[f.Name]++
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]domain.AggregatedPoint, 0, len(order))
	for _, key := range order {
		acc := buckets[key]
		values := make(map[string]float64, len(fields))
		for _, f := range fields {
			v := acc.sums[f.Name]
			if f.Kind == domain.KindAverage {
				if n := acc.counts[f.Name]; n > 0 {
					v /= float64(n)
				}
			}
			values[f.Name] = v
		}
		out = append(out, domain.AggregatedPoint{Date: key, Values: values})
	}
	return out
}

// SeriesFromAggregated flattens one field of bucketed points back into a
// plain series for single-line charts.
func SeriesFromAggregated(points []domain.AggregatedPoint, network, metric, field string) domain.Series {
	s := domain.Series{Network: network, Metric: metric, Points: make([]domain.Point, 0, len(points))}
	for _, p := range points {
		s.Points = append(s.Points, domain.Point{Timestamp: p.Date, Value: p.Values[field]})
	}
	return s
}

// bucketStart truncates a timestamp to the start of its bucket: UTC
// midnight for days, Monday midnight for weeks, the first of the month
// for months.
func bucketStart(t time.Time, granularity domain.Bucket) time.Time {
	t = t.UTC()
	switch granularity {
	case domain.BucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}
