package networks

import (
	"testing"
	"time"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	n, err := Lookup(" Bitcoin ")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if n.ID != "bitcoin" {
		t.Errorf("expected ID bitcoin, got %q", n.ID)
	}
	if n.Symbol != "BTC" {
		t.Errorf("expected symbol BTC, got %q", n.Symbol)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("dogecoin")
	if err == nil {
		t.Fatal("expected error for unknown network, got nil")
	}
}

func TestFloors(t *testing.T) {
	tests := []struct {
		network string
		want    time.Time
	}{
		{"bitcoin", time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"ethereum", time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"avalanche", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"solana", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		n, err := Lookup(tt.network)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", tt.network, err)
		}
		if !n.Floor.Equal(tt.want) {
			t.Errorf("%s floor = %v, want %v", tt.network, n.Floor, tt.want)
		}
	}
}

func TestStakingRatioFloor(t *testing.T) {
	m, err := LookupMetric("staking-ratio")
	if err != nil {
		t.Fatalf("LookupMetric failed: %v", err)
	}
	want := time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !m.Floor.Equal(want) {
		t.Errorf("staking-ratio floor = %v, want %v", m.Floor, want)
	}
}

func TestMetricsFor_Restrictions(t *testing.T) {
	btc := MetricsFor("bitcoin")
	for _, m := range btc {
		if m.ID == "staking-ratio" {
			t.Error("bitcoin should not offer staking-ratio")
		}
		if m.ID == "gas-used" {
			t.Error("bitcoin should not offer gas-used")
		}
	}

	if !Supports("ethereum", "staking-ratio") {
		t.Error("ethereum should offer staking-ratio")
	}
	if Supports("solana", "gas-used") {
		t.Error("solana should not offer gas-used")
	}
	if !Supports("solana", "price") {
		t.Error("unrestricted metrics should be available everywhere")
	}
}

func TestList_Sorted(t *testing.T) {
	nets := List()
	if len(nets) < 2 {
		t.Fatalf("expected at least 2 networks, got %d", len(nets))
	}
	for i := 1; i < len(nets); i++ {
		if nets[i-1].ID >= nets[i].ID {
			t.Errorf("networks not sorted: %q before %q", nets[i-1].ID, nets[i].ID)
		}
	}
}

func TestEveryMetricHasSchema(t *testing.T) {
	for _, m := range Metrics() {
		if len(m.Fields) == 0 {
			t.Errorf("metric %q has no field schema", m.ID)
		}
		for _, f := range m.Fields {
			if f.Kind == "" || f.Unit == "" {
				t.Errorf("metric %q field %q missing kind or unit", m.ID, f.Name)
			}
		}
		if m.Source == "" {
			t.Errorf("metric %q has no primary source", m.ID)
		}
	}
}
