package format

import (
	"math"
	"testing"

	"github.com/yashh-d/chainpulse/internal/domain"
)

func TestMagnitude_Currency(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1_500_000_000, "$1.50B"},
		{2_340_000_000_000, "$2.34T"},
		{7_250_000, "$7.25M"},
		{1_000, "$1.00K"},
		{999.994, "$999.99"},
		{0.51, "$0.51"},
		{0, "$0.00"},
		{-1_500_000, "-$1.50M"},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.value, domain.UnitCurrency); got != tt.want {
			t.Errorf("Magnitude(%v, currency) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestMagnitude_Price(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0.0001234, "$0.000123"},
		{0.514, "$0.514000"},
		{42.37, "$42.37"},
		{68_450, "$68.45K"},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.value, domain.UnitPrice); got != tt.want {
			t.Errorf("Magnitude(%v, price) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestMagnitude_Ratio(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		// Fractions are scaled by 100; already-percentage values pass
		// through. Both forms of 51.4% render identically.
		{0.514, "51.40%"},
		{51.4, "51.40%"},
		{0, "0.00%"},
		{1, "1.00%"},
		{99.9, "99.90%"},
		{-0.05, "-5.00%"},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.value, domain.UnitRatio); got != tt.want {
			t.Errorf("Magnitude(%v, ratio) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestMagnitude_Count(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1_500_000, "1.50M"},
		{842, "842"},
		{12_400, "12.40K"},
		{3_000_000_000, "3.00B"},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.value, domain.UnitCount); got != tt.want {
			t.Errorf("Magnitude(%v, count) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestMagnitude_UnknownUnitFallsBack(t *testing.T) {
	got := Magnitude(1_234_567.89, domain.Unit("bogus"))
	if got != "1,234,567.89" {
		t.Errorf("unknown unit = %q, want thousands-grouped fallback", got)
	}
}

func TestMagnitude_NonFinite(t *testing.T) {
	if got := Magnitude(math.NaN(), domain.UnitCurrency); got != "$0.00" {
		t.Errorf("NaN = %q, want $0.00", got)
	}
	if got := Magnitude(math.Inf(1), domain.UnitCount); got != "0" {
		t.Errorf("+Inf count = %q, want 0", got)
	}
}
