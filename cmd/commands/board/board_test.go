package board

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yashh-d/chainpulse/internal/boardstore"
	"github.com/yashh-d/chainpulse/internal/database"
)

// setupEnv points the board store at a throwaway database.
func setupEnv(t *testing.T) {
	t.Helper()
	database.SetPath(filepath.Join(t.TempDir(), "chainpulse.db"))
	t.Cleanup(database.ResetPath)
}

// execBoard runs the board command tree with the given args and returns
// the combined output.
func execBoard(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func assertContainsAll(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n--- got ---\n%s", want, got)
		}
	}
}

func TestSaveDirect_CreatesBoard(t *testing.T) {
	setupEnv(t)

	out, err := execBoard(t, "save", "eth-overview", "--network", "ethereum", "--metrics", "tvl,tx-count", "--range", "6M")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, `Saved board "eth-overview"`, "ethereum", "2 metrics")

	repo, err := boardstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	board, err := repo.Get("eth-overview")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if board == nil {
		t.Fatal("board was not persisted")
	}
	if board.Network != "ethereum" || len(board.Metrics) != 2 || board.Range != "6M" {
		t.Errorf("persisted board = %+v, want ethereum/2 metrics/6M", board)
	}
}

func TestSaveDirect_CanonicalizesRange(t *testing.T) {
	setupEnv(t)

	if _, err := execBoard(t, "save", "avax-fees", "--network", "avalanche", "--metrics", "fees-paid", "--range", "30d"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out, err := execBoard(t, "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "30D")
}

func TestSaveDirect_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing name",
			args:    []string{"save", "--network", "ethereum", "--metrics", "tvl"},
			wantErr: "board name is required",
		},
		{
			name:    "bad slug",
			args:    []string{"save", "Eth Overview!", "--network", "ethereum", "--metrics", "tvl"},
			wantErr: "invalid characters",
		},
		{
			name:    "unknown network",
			args:    []string{"save", "my-board", "--network", "dogechain", "--metrics", "tvl"},
			wantErr: "unknown network",
		},
		{
			name:    "unknown metric",
			args:    []string{"save", "my-board", "--network", "ethereum", "--metrics", "hashrate"},
			wantErr: "unknown metric",
		},
		{
			name:    "unsupported metric",
			args:    []string{"save", "my-board", "--network", "bitcoin", "--metrics", "gas-used"},
			wantErr: "does not track",
		},
		{
			name:    "bad range",
			args:    []string{"save", "my-board", "--network", "ethereum", "--metrics", "tvl", "--range", "2W"},
			wantErr: "unknown range token",
		},
		{
			name:    "metrics without network",
			args:    []string{"save", "my-board", "--metrics", "tvl"},
			wantErr: "--network is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)

			_, err := execBoard(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave_NoTerminalWithoutFlags(t *testing.T) {
	setupEnv(t)

	_, err := execBoard(t, "save", "my-board")
	if err == nil {
		t.Fatal("expected error without a terminal")
	}
	if !strings.Contains(err.Error(), "--network") {
		t.Errorf("error = %v, want hint about --network", err)
	}
}

func TestList_Empty(t *testing.T) {
	setupEnv(t)

	out, err := execBoard(t, "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "No saved boards")
}

func TestList_Table(t *testing.T) {
	setupEnv(t)

	if _, err := execBoard(t, "save", "eth-overview", "--network", "ethereum", "--metrics", "tvl,tx-count", "--range", "6M"); err != nil {
		t.Fatalf("save error = %v", err)
	}
	if _, err := execBoard(t, "save", "avax-fees", "--network", "avalanche", "--metrics", "fees-paid"); err != nil {
		t.Fatalf("save error = %v", err)
	}

	out, err := execBoard(t, "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	assertContainsAll(t, out,
		"NAME", "NETWORK", "METRICS", "RANGE", "UPDATED",
		"eth-overview", "ethereum", "tvl,tx-count", "6M",
		"avax-fees", "avalanche", "fees-paid",
	)

	// List is ordered by name.
	if strings.Index(out, "avax-fees") > strings.Index(out, "eth-overview") {
		t.Errorf("boards should be sorted by name\n--- got ---\n%s", out)
	}
}

func TestList_JSON(t *testing.T) {
	setupEnv(t)

	if _, err := execBoard(t, "save", "eth-overview", "--network", "ethereum", "--metrics", "tvl"); err != nil {
		t.Fatalf("save error = %v", err)
	}

	out, err := execBoard(t, "list", "-o", "json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, `"eth-overview"`, `"ethereum"`)
}

func TestDelete_Yes(t *testing.T) {
	setupEnv(t)

	if _, err := execBoard(t, "save", "eth-overview", "--network", "ethereum", "--metrics", "tvl"); err != nil {
		t.Fatalf("save error = %v", err)
	}

	out, err := execBoard(t, "delete", "eth-overview", "--yes")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, `Deleted board "eth-overview"`)

	repo, err := boardstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	board, err := repo.Get("eth-overview")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if board != nil {
		t.Error("board should be gone after delete")
	}
}

func TestDelete_Yes_Missing(t *testing.T) {
	setupEnv(t)

	_, err := execBoard(t, "delete", "ghost", "--yes")
	if err == nil {
		t.Fatal("expected error for missing board")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want mention of not found", err)
	}
}

func TestDelete_Yes_RequiresName(t *testing.T) {
	setupEnv(t)

	_, err := execBoard(t, "delete", "--yes")
	if err == nil {
		t.Fatal("expected error without a name")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("error = %v, want mention of required name", err)
	}
}

func TestDelete_NoTerminal(t *testing.T) {
	setupEnv(t)

	_, err := execBoard(t, "delete", "eth-overview")
	if err == nil {
		t.Fatal("expected error without a terminal")
	}
	if !strings.Contains(err.Error(), "--yes") {
		t.Errorf("error = %v, want hint about --yes", err)
	}
}

func TestCanonicalRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "6M", want: "6M"},
		{in: "6m", want: "6M"},
		{in: " 30d ", want: "30D"},
		{in: "all", want: "ALL"},
		{in: "2W", wantErr: true},
		{in: "", wantErr: true},
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
