// Package aggregate turns raw source rows into chartable series:
// numeric coercion, bucket grouping driven by the field schema, and
// share-of-total distributions.
package aggregate

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/yashh-d/chainpulse/internal/domain"
)

// CoerceValue converts one raw cell to a float64. Upstream rows mix
// numbers, numeric strings with thousands separators, and nulls; anything
// unparseable coerces to zero rather than erroring, which deliberately
// masks malformed upstream data as 0.
func CoerceValue(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Normalize extracts one field from raw rows as a clean ascending series.
// Missing cells coerce to zero like nulls do.
func Normalize(rows []domain.RawRow, field string) []domain.Point {
	points := make([]domain.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.Point{
			Timestamp: row.Timestamp,
			Value:     CoerceValue(row.Values[field]),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// NormalizeSeries is Normalize packaged with its identifying metadata.
func NormalizeSeries(rows []domain.RawRow, network, metric, field string) domain.Series {
	return domain.Series{
		Network: network,
		Metric:  metric,
		Points:  Normalize(rows, field),
	}
}
