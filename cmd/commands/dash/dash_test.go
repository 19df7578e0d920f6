package dash

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/database"

	"github.com/spf13/cobra"
)

func setupEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()

	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)

	database.SetPath(filepath.Join(dir, "chainpulse.db"))
	t.Cleanup(database.ResetPath)
}

// parsedCmd returns the dash command with flags parsed, without
// executing it.
func parsedCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := NewCommand()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return cmd
}

func seedBoard(t *testing.T, board *boardstore.Board) {
	t.Helper()

	repo, err := boardstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	if err := repo.Save(board); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestResolveLayout_BoardFlag(t *testing.T) {
	setupEnv(t)
	seedBoard(t, &boardstore.Board{
		Name:    "eth-overview",
		Network: "ethereum",
		Metrics: []string{"tvl", "tx-count"},
		Range:   "6M",
	})

	cmd := parsedCmd(t, "--board", "ETH-Overview")

	layout, err := resolveLayout(cmd, &config.Config{})
	if err != nil {
		t.Fatalf("resolveLayout() error = %v", err)
	}

	if layout.Name != "eth-overview" || layout.Network != "ethereum" {
		t.Errorf("layout = %+v, want eth-overview/ethereum", layout)
	}
	if len(layout.Metrics) != 2 || layout.Range != "6M" {
		t.Errorf("layout = %+v, want 2 metrics and range 6M", layout)
	}
}

func TestResolveLayout_BoardNotFound(t *testing.T) {
	setupEnv(t)

	cmd := parsedCmd(t, "--board", "ghost")

	_, err := resolveLayout(cmd, &config.Config{})
	if err == nil {
		t.Fatal("expected error for missing board")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want mention of not found", err)
	}
}

func TestResolveLayout_NetworkFlag(t *testing.T) {
	setupEnv(t)

	cmd := parsedCmd(t, "--network", "Avalanche", "--metrics", "TVL, tx-count")

	layout, err := resolveLayout(cmd, &config.Config{})
	if err != nil {
		t.Fatalf("resolveLayout() error = %v", err)
	}

	if layout.Network != "avalanche" {
		t.Errorf("network = %q, want avalanche", layout.Network)
	}
	if len(layout.Metrics) != 2 || layout.Metrics[0] != "tvl" {
		t.Errorf("metrics = %v, want [tvl tx-count]", layout.Metrics)
	}
}

func TestResolveLayout_DefaultNetwork(t *testing.T) {
	setupEnv(t)

	cmd := parsedCmd(t)

	layout, err := resolveLayout(cmd, &config.Config{DefaultNetwork: "ethereum"})
	if err != nil {
		t.Fatalf("resolveLayout() error = %v", err)
	}
	if layout.Network != "ethereum" {
		t.Errorf("network = %q, want ethereum", layout.Network)
	}
}

func TestResolveLayout_NothingToShow(t *testing.T) {
	setupEnv(t)

	cmd := parsedCmd(t)

	_, err := resolveLayout(cmd, &config.Config{})
	if err == nil {
		t.Fatal("expected error with no layout sources")
	}
	if !strings.Contains(err.Error(), "nothing to show") {
		t.Errorf("error = %v, want nothing-to-show message", err)
	}
}

func TestResolveMetricList_DefaultSet(t *testing.T) {
	list, err := resolveMetricList("bitcoin", nil)
	if err != nil {
		t.Fatalf("resolveMetricList() error = %v", err)
	}

	if len(list) != len(defaultMetricIDs) {
		t.Fatalf("metrics = %d, want %d", len(list), len(defaultMetricIDs))
	}
	for i, id := range defaultMetricIDs {
		if list[i].ID != id {
			t.Errorf("metric[%d] = %q, want %q", i, list[i].ID, id)
		}
	}
}

func TestResolveMetricList_Explicit(t *testing.T) {
	list, err := resolveMetricList("ethereum", []string{"staking-ratio", "gas-used"})
	if err != nil {
		t.Fatalf("resolveMetricList() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "staking-ratio" {
		t.Errorf("metrics = %+v, want staking-ratio, gas-used", list)
	}
}

func TestResolveMetricList_Unsupported(t *testing.T) {
	_, err := resolveMetricList("bitcoin", []string{"gas-used"})
	if err == nil {
		t.Fatal("expected error for unsupported metric")
	}
	if !strings.Contains(err.Error(), "does not track") {
		t.Errorf("error = %v, want mention of unsupported metric", err)
	}
}

func TestResolveMetricList_Unknown(t *testing.T) {
	_, err := resolveMetricList("ethereum", []string{"hashrate"})
	if err == nil {
		t.Fatal("expected error for unknown metric")
	}
	if !strings.Contains(err.Error(), "unknown metric") {
		t.Errorf("error = %v, want mention of unknown metric", err)
	}
}

func TestCanonicalRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1y", want: "1Y"},
		{in: "7D", want: "7D"},
		{in: "all", want: "ALL"},
		{in: "14D", wantErr: true},
	}

	for _, tt := range tests {
		got, err := canonicalRange(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("canonicalRange(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalRange(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("canonicalRange(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
