package boardstore

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chainpulse.db")
	r, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSave_Insert(t *testing.T) {
	r := tempRepo(t)

	board := &Board{
		Name:    "avax-health",
		Network: "avalanche",
		Metrics: []string{"tx-count", "active-addresses", "fees-paid"},
		Range:   "90D",
	}
	if err := r.Save(board); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if board.ID == 0 {
		t.Error("expected ID to be assigned after insert")
	}
	if board.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestSave_UpsertByName(t *testing.T) {
	r := tempRepo(t)

	board := &Board{
		Name:    "avax-health",
		Network: "avalanche",
		Metrics: []string{"tx-count"},
		Range:   "90D",
	}
	if err := r.Save(board); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Saving under the same name replaces the layout.
	board.Metrics = []string{"tx-count", "fees-paid"}
	board.Range = "1Y"
	if err := r.Save(board); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := r.Get("avax-health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected board, got nil")
	}
	if diff := cmp.Diff([]string{"tx-count", "fees-paid"}, got.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
	if got.Range != "1Y" {
		t.Errorf("expected range '1Y', got %q", got.Range)
	}

	boards, _ := r.List()
	if len(boards) != 1 {
		t.Errorf("expected 1 board after upsert, got %d", len(boards))
	}
}

func TestGet_NotFound(t *testing.T) {
	r := tempRepo(t)

	got, err := r.Get("missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing board, got %+v", got)
	}
}

func TestList_SortedByName(t *testing.T) {
	r := tempRepo(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		board := &Board{Name: name, Network: "ethereum", Metrics: []string{"price"}, Range: "30D"}
		if err := r.Save(board); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	boards, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(boards) != 3 {
		t.Fatalf("expected 3 boards, got %d", len(boards))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, board := range boards {
		if board.Name != want[i] {
			t.Errorf("expected board %d to be %q, got %q", i, want[i], board.Name)
		}
	}
}

func TestDelete(t *testing.T) {
	r := tempRepo(t)

	board := &Board{Name: "avax-health", Network: "avalanche", Metrics: []string{"tx-count"}, Range: "90D"}
	if err := r.Save(board); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := r.Delete("avax-health"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := r.Get("avax-health")
	if got != nil {
		t.Errorf("expected board gone after delete, got %+v", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	r := tempRepo(t)

	if err := r.Delete("missing"); err == nil {
		t.Fatal("expected error deleting non-existent board")
	}
}

func TestSQLiteRepository_Persistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chainpulse.db")

	r1, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	board := &Board{Name: "avax-health", Network: "avalanche", Metrics: []string{"tx-count"}, Range: "90D"}
	if err := r1.Save(board); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	r1.Close()

	r2, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	defer r2.Close()

	got, err := r2.Get("avax-health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected board to be persisted, got nil")
	}
	if got.Network != "avalanche" {
		t.Errorf("expected network 'avalanche', got %q", got.Network)
	}
}
