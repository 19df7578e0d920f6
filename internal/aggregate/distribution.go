package aggregate

import (
	"fmt"
	"sort"

	"github.com/yashh-d/chainpulse/internal/domain"
)

// DefaultThreshold is the share below which a slice is folded into
// "Other".
const DefaultThreshold = 0.01

// OtherLabel names the synthetic slice holding all merged small items.
const OtherLabel = "Other"

// ToDistribution computes each row's share of the total for pie/share
// charts. Rows with the same label are combined first. Items whose share
// of the total falls below threshold merge into a single "Other" slice;
// the rest are sorted descending by value with "Other" appended last.
// Percentages sum to ~100 for any input with a positive total; a
// non-positive total yields nil.
func ToDistribution(rows []domain.RawRow, labelField, valueField string, threshold float64) []domain.DistributionSlice {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	totals := make(map[string]float64)
	var order []string
	for _, row := range rows {
		label := labelString(row.Values[labelField])
		if label == "" {
			continue
		}
		if _, ok := totals[label]; !ok {
			order = append(order, label)
		}
		totals[label] += CoerceValue(row.Values[valueField])
	}

	var total float64
	for _, v := range totals {
		total += v
	}
	if total <= 0 {
		return nil
	}

	var slices []domain.DistributionSlice
	var otherValue float64
	for _, label := range order {
		value := totals[label]
		if value/total < threshold {
			otherValue += value
			continue
		}
		slices = append(slices, domain.DistributionSlice{
			Label:      label,
			Value:      value,
			Percentage: value / total * 100,
		})
	}

	sort.Slice(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })

	if otherValue > 0 {
		slices = append(slices, domain.DistributionSlice{
			Label:      OtherLabel,
			Value:      otherValue,
			Percentage: otherValue / total * 100,
		})
	}

	return slices
}

// labelString extracts a category label from a raw cell. Non-string
// labels (numeric protocol IDs and the like) render via fmt.
func labelString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
