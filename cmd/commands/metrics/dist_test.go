package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
)

func stableRows() []domain.RawRow {
	now := time.Now().UTC()
	return []domain.RawRow{
		{Timestamp: now, Values: map[string]any{"stablecoin": "USDT", "value": 700_000_000.0}},
		{Timestamp: now, Values: map[string]any{"stablecoin": "USDC", "value": 300_000_000.0}},
	}
}

func TestDist_Table(t *testing.T) {
	setupEnv(t)
	registerStub(t, "llama-stables", &stubSource{
		name:     "Llama Stablecoins",
		distRows: stableRows(),
	})

	out, err := execMetrics(t, "dist", "ethereum", "--by", "stablecoin")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	assertContainsAll(t, out,
		"LABEL", "VALUE", "SHARE",
		"USDT", "70.0%",
		"USDC", "30.0%",
		"Llama Stablecoins",
	)
}

func TestDist_JSON(t *testing.T) {
	setupEnv(t)
	registerStub(t, "llama-stables", &stubSource{
		name:     "Llama Stablecoins",
		distRows: stableRows(),
	})

	out, err := execMetrics(t, "dist", "ethereum", "--by", "stablecoin", "-o", "json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	assertContainsAll(t, out,
		`"network": "ethereum"`,
		`"by": "stablecoin"`,
		`"label": "USDT"`,
	)
}

func TestDist_CSVSanitizesLabels(t *testing.T) {
	setupEnv(t)
	registerStub(t, "llama-stables", &stubSource{
		name: "Llama Stablecoins",
		distRows: []domain.RawRow{
			{Timestamp: time.Now().UTC(), Values: map[string]any{"stablecoin": "=HYPERLINK(evil)", "value": 900_000_000.0}},
			{Timestamp: time.Now().UTC(), Values: map[string]any{"stablecoin": "USDC", "value": 100_000_000.0}},
		},
	})

	out, err := execMetrics(t, "dist", "ethereum", "--by", "stablecoin", "-o", "csv")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out, "'=HYPERLINK(evil)") {
		t.Errorf("formula label should be neutralized with a leading quote\n--- got ---\n%s", out)
	}
}

func TestDist_UnknownBreakdown(t *testing.T) {
	setupEnv(t)

	_, err := execMetrics(t, "dist", "ethereum", "--by", "validator")
	if err == nil {
		t.Fatal("expected error for unknown breakdown")
	}
	if !strings.Contains(err.Error(), "unknown breakdown") {
		t.Errorf("error = %v, want mention of unknown breakdown", err)
	}
}

func TestSanitizeCSVField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "USDT", want: "USDT"},
		{in: "=SUM(A1)", want: "'=SUM(A1)"},
		{in: "+1", want: "'+1"},
		{in: "-1", want: "'-1"},
		{in: "@cmd", want: "'@cmd"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := sanitizeCSVField(tt.in); got != tt.want {
			t.Errorf("sanitizeCSVField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
