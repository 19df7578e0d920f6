package aggregate

import (
	"math"
	"testing"

	"github.com/yashh-d/chainpulse/internal/domain"
)

func distRows(values map[string]float64) []domain.RawRow {
	rows := make([]domain.RawRow, 0, len(values))
	for label, v := range values {
		rows = append(rows, domain.RawRow{
			Values: map[string]any{"name": label, "circulating": v},
		})
	}
	return rows
}

func percentageSum(slices []domain.DistributionSlice) float64 {
	var sum float64
	for _, s := range slices {
		sum += s.Percentage
	}
	return sum
}

func TestToDistribution_SmallSlicesMergeIntoOther(t *testing.T) {
	rows := distRows(map[string]float64{
		"USDT": 600,
		"USDC": 300,
		"DAI":  95,
		"TUSD": 3,
		"FRAX": 2,
	})

	slices := ToDistribution(rows, "name", "circulating", DefaultThreshold)

	if math.Abs(percentageSum(slices)-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", percentageSum(slices))
	}

	last := slices[len(slices)-1]
	if last.Label != OtherLabel {
		t.Fatalf("expected trailing Other slice, got %q", last.Label)
	}
	if last.Value != 5 {
		t.Errorf("Other value = %v, want 5", last.Value)
	}

	for _, s := range slices[:len(slices)-1] {
		if s.Percentage < 1 {
			t.Errorf("non-Other slice %q has percentage %v below threshold", s.Label, s.Percentage)
		}
	}
}

func TestToDistribution_SortedDescending(t *testing.T) {
	rows := distRows(map[string]float64{
		"USDC": 300,
		"USDT": 600,
		"DAI":  100,
	})

	slices := ToDistribution(rows, "name", "circulating", DefaultThreshold)
	if len(slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(slices))
	}
	want := []string{"USDT", "USDC", "DAI"}
	for i, label := range want {
		if slices[i].Label != label {
			t.Errorf("slice %d = %q, want %q", i, slices[i].Label, label)
		}
	}
}

func TestToDistribution_DegenerateAllMerged(t *testing.T) {
	values := make(map[string]float64, 200)
	for i := 0; i < 200; i++ {
		values[labelN(i)] = 1
	}

	slices := ToDistribution(distRows(values), "name", "circulating", DefaultThreshold)
	if len(slices) != 1 {
		t.Fatalf("expected single Other slice, got %d slices", len(slices))
	}
	if slices[0].Label != OtherLabel {
		t.Errorf("expected Other, got %q", slices[0].Label)
	}
	if math.Abs(slices[0].Percentage-100) > 1e-9 {
		t.Errorf("Other percentage = %v, want 100", slices[0].Percentage)
	}
}

func TestToDistribution_CombinesDuplicateLabels(t *testing.T) {
	rows := []domain.RawRow{
		{Values: map[string]any{"name": "USDT", "circulating": 300.0}},
		{Values: map[string]any{"name": "USDT", "circulating": "300"}},
		{Values: map[string]any{"name": "USDC", "circulating": 400.0}},
	}

	slices := ToDistribution(rows, "name", "circulating", DefaultThreshold)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Label != "USDT" || slices[0].Value != 600 {
		t.Errorf("expected USDT 600 first, got %q %v", slices[0].Label, slices[0].Value)
	}
}

func TestToDistribution_ZeroTotal(t *testing.T) {
	rows := distRows(map[string]float64{"USDT": 0, "USDC": 0})
	if got := ToDistribution(rows, "name", "circulating", DefaultThreshold); got != nil {
		t.Errorf("expected nil for zero total, got %v", got)
	}
}

func labelN(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string([]byte{letters[i%26], letters[(i/26)%26], 'x'})
}
