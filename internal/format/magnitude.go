// Package format renders metric values for display.
//
// Formatting never fails: non-finite input degrades to zero and unknown
// units fall back to a thousands-grouped plain number, because a chart
// label is never worth an error path.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yashh-d/chainpulse/internal/domain"
)

// Magnitude-suffix boundaries.
const (
	thousand = 1e3
	million  = 1e6
	billion  = 1e9
	trillion = 1e12
)

// Magnitude formats a value according to its declared unit:
//
//	currency  $1.50B, $842.10
//	price     currency, but 6 decimals below 1 ($0.000123)
//	count     1.50B, 842
//	ratio     51.40%
//
// Ratio keeps the legacy magnitude heuristic for values that arrive
// untagged as fraction-or-percentage: anything with absolute value below
// 1 is treated as a fraction and scaled by 100, so 0.514 and 51.4 both
// render as "51.40%". Carrying a proper Unit on the field schema is what
// actually disambiguates; this is only the terminal fallback.
func Magnitude(value float64, unit domain.Unit) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}

	sign := ""
	if value < 0 {
		sign = "-"
	}

	switch unit {
	case domain.UnitCurrency:
		return sign + "$" + suffixed(abs(value), 2)
	case domain.UnitPrice:
		if abs(value) < 1 {
			return fmt.Sprintf("%s$%.6f", sign, abs(value))
		}
		return sign + "$" + suffixed(abs(value), 2)
	case domain.UnitCount:
		if abs(value) < thousand {
			return humanize.Commaf(value)
		}
		return suffixed(value, 2)
	case domain.UnitRatio:
		if abs(value) < 1 {
			value *= 100
		}
		return fmt.Sprintf("%.2f%%", value)
	default:
		return humanize.Commaf(value)
	}
}

// suffixed renders with K/M/B/T magnitude suffixes at the given
// precision, preserving sign.
func suffixed(value float64, decimals int) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	var scaled float64
	var suffix string
	switch {
	case value >= trillion:
		scaled, suffix = value/trillion, "T"
	case value >= billion:
		scaled, suffix = value/billion, "B"
	case value >= million:
		scaled, suffix = value/million, "M"
	case value >= thousand:
		scaled, suffix = value/thousand, "K"
	default:
		return fmt.Sprintf("%s%.*f", sign, decimals, value)
	}
	return fmt.Sprintf("%s%.*f%s", sign, decimals, scaled, suffix)
}

// BucketLabel renders a point's date at the granularity it was grouped
// to, for axis labels and table rows.
func BucketLabel(t time.Time, bucket domain.Bucket) string {
	switch bucket {
	case domain.BucketMonth:
		return t.Format("Jan 2006")
	case domain.BucketWeek:
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
