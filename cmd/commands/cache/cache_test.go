package cache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/database"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/snapstore"
	"github.com/yashh-d/chainpulse/internal/sources"
)

// metricStub serves or fails per metric ID so partial sync outcomes can
// be exercised.
type metricStub struct {
	name   string
	rows   map[string][]domain.RawRow
	errFor map[string]error
}

func (s *metricStub) GetDisplayName() string { return s.name }

func (s *metricStub) FetchSeries(_ context.Context, query domain.SeriesQuery) ([]domain.RawRow, error) {
	if err := s.errFor[query.Metric.ID]; err != nil {
		return nil, err
	}
	return s.rows[query.Metric.ID], nil
}

func setupEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()

	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)

	database.SetPath(filepath.Join(dir, "chainpulse.db"))
	t.Cleanup(database.ResetPath)

	sources.Reset()
	t.Cleanup(sources.Reset)
}

func registerStub(t *testing.T, name string, src domain.Source) {
	t.Helper()
	sources.Register(name, func(auth.Store) (domain.Source, error) {
		return src, nil
	})
}

func execCache(t *testing.T, args ...string) (string, error) {
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

// recentRows returns one raw row per value on consecutive recent days.
func recentRows(field string, values ...float64) []domain.RawRow {
	rows := make([]domain.RawRow, len(values))
	base := time.Now().UTC().Truncate(24 * time.Hour)
	for i, v := range values {
		rows[i] = domain.RawRow{
			Timestamp: base.AddDate(0, 0, -(len(values) - 1 - i)),
			Values:    map[string]any{field: v},
		}
	}
	return rows
}

func TestSync_WritesSnapshots(t *testing.T) {
	setupEnv(t)
	registerStub(t, "supabase", &metricStub{
		name: "Supabase",
		rows: map[string][]domain.RawRow{
			"tx-count": recentRows("tx_count", 100, 200, 300),
		},
	})

	out, err := execCache(t, "sync", "avalanche", "--metrics", "tx-count", "--range", "30D")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	assertContainsAll(t, out,
		"avalanche/tx-count: 3 rows from Supabase",
		"Synced 1 metrics for avalanche",
	)

	repo, err := snapstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if len(stats) != 1 || stats[0].Points == 0 {
		t.Errorf("stats = %+v, want one cached series with points", stats)
	}

	runs, err := repo.RecentSyncs(5)
	if err != nil {
		t.Fatalf("RecentSyncs() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Status != snapstore.StatusSuccess {
		t.Errorf("runs = %+v, want one success run", runs)
	}
}

func TestSync_PartialFailure(t *testing.T) {
	setupEnv(t)
	registerStub(t, "supabase", &metricStub{
		name: "Supabase",
		rows: map[string][]domain.RawRow{
			"tx-count": recentRows("tx_count", 100, 200),
		},
		errFor: map[string]error{
			"fees-paid": errors.New("boom"),
		},
	})

	out, err := execCache(t, "sync", "avalanche", "--metrics", "tx-count,fees-paid", "--range", "30D")
	if err == nil {
		t.Fatal("expected error when a metric fails to sync")
	}
	if !strings.Contains(err.Error(), "1 of 2 metrics failed") {
		t.Errorf("error = %v, want failure count", err)
	}

	assertContainsAll(t, out,
		"avalanche/tx-count: 2 rows from Supabase",
		"avalanche/fees-paid: FAILED",
	)
}

func TestSync_DefaultNetworkFromConfig(t *testing.T) {
	setupEnv(t)

	cfg := &config.Config{DefaultNetwork: "ethereum"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	registerStub(t, "supabase", &metricStub{
		name: "Supabase",
		rows: map[string][]domain.RawRow{
			"tx-count": recentRows("tx_count", 100),
		},
	})

	out, err := execCache(t, "sync", "--metrics", "tx-count", "--range", "7D")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "ethereum/tx-count")
}

func TestSync_UnknownMetric(t *testing.T) {
	setupEnv(t)

	_, err := execCache(t, "sync", "avalanche", "--metrics", "hashrate")
	if err == nil {
		t.Fatal("expected error for unknown metric")
	}
	if !strings.Contains(err.Error(), "unknown metric") {
		t.Errorf("error = %v, want mention of unknown metric", err)
	}
}

func TestStatus_Empty(t *testing.T) {
	setupEnv(t)

	out, err := execCache(t, "status")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "Snapshot cache is empty")
}

func TestStatus_Table(t *testing.T) {
	setupEnv(t)
	seedSnapshots(t, "avalanche", "tx-count", 3)

	out, err := execCache(t, "status")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out,
		"NETWORK", "METRIC", "POINTS", "OLDEST", "NEWEST",
		"avalanche", "tx-count", "3",
	)
}

func TestHistory_Empty(t *testing.T) {
	setupEnv(t)

	out, err := execCache(t, "history")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "No sync runs recorded.")
}

func TestHistory_Table(t *testing.T) {
	setupEnv(t)

	repo, err := snapstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	run := &snapstore.SyncRun{
		Network:    "ethereum",
		Metric:     "tvl",
		RangeToken: "1Y",
		Source:     "DefiLlama",
		Rows:       52,
		Status:     snapstore.StatusSuccess,
		Duration:   1200 * time.Millisecond,
		StartedAt:  time.Now().Add(-time.Minute),
	}
	if err := repo.RecordSync(run); err != nil {
		t.Fatalf("RecordSync() error = %v", err)
	}
	repo.Close()

	out, err := execCache(t, "history")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out,
		"TIME", "NETWORK", "METRIC", "RANGE", "SOURCE", "ROWS", "STATUS", "DURATION",
		"ethereum", "tvl", "1Y", "DefiLlama", "52", "success", "1.2s",
	)
}

func TestHistory_BadLimit(t *testing.T) {
	setupEnv(t)

	_, err := execCache(t, "history", "--limit", "0")
	if err == nil {
		t.Fatal("expected error for zero limit")
	}
	if !strings.Contains(err.Error(), "greater than 0") {
		t.Errorf("error = %v, want limit validation", err)
	}
}

func TestPrune_RemovesOldPoints(t *testing.T) {
	setupEnv(t)

	repo, err := snapstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	now := time.Now().UTC()
	points := []domain.Point{
		{Timestamp: now.AddDate(0, 0, -400), Value: 1},
		{Timestamp: now.AddDate(0, 0, -200), Value: 2},
		{Timestamp: now.AddDate(0, 0, -1), Value: 3},
	}
	if _, err := repo.UpsertSeries("avalanche", "tx-count", points); err != nil {
		t.Fatalf("UpsertSeries() error = %v", err)
	}
	repo.Close()

	out, err := execCache(t, "prune", "--older-than", "365d")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	assertContainsAll(t, out, "Removed 1 snapshot point(s).")
}

func TestPrune_RequiresFlag(t *testing.T) {
	setupEnv(t)

	_, err := execCache(t, "prune")
	if err == nil {
		t.Fatal("expected error without --older-than")
	}
	if !strings.Contains(err.Error(), "--older-than is required") {
		t.Errorf("error = %v, want required flag message", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "90d", want: 90 * 24 * time.Hour},
		{in: "72h", want: 72 * time.Hour},
		{in: "30m", want: 30 * time.Minute},
		{in: "bogus", wantErr: true},
		{in: "-5d", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDuration(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDuration(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// seedSnapshots writes n recent daily points for one series.
func seedSnapshots(t *testing.T, network, metric string, n int) {
	t.Helper()

	repo, err := snapstore.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer repo.Close()

	base := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]domain.Point, n)
	for i := range points {
		points[i] = domain.Point{Timestamp: base.AddDate(0, 0, -(n - 1 - i)), Value: float64(100 * (i + 1))}
	}
	if _, err := repo.UpsertSeries(network, metric, points); err != nil {
		t.Fatalf("UpsertSeries() error = %v", err)
	}
}
