package metrics

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/database"
	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/sources"
)

// stubSource serves canned rows for both series and distribution
// queries.
type stubSource struct {
	name     string
	rows     []domain.RawRow
	err      error
	distRows []domain.RawRow
	distErr  error
}

func (s *stubSource) GetDisplayName() string { return s.name }

func (s *stubSource) FetchSeries(_ context.Context, _ domain.SeriesQuery) ([]domain.RawRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) FetchDistribution(_ context.Context, _ domain.DistributionQuery) ([]domain.RawRow, error) {
	if s.distErr != nil {
		return nil, s.distErr
	}
	return s.distRows, nil
}

// setupEnv isolates config, database, and source registry state from
// the host and from other tests.
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

// execMetrics runs the metrics command tree with the given args and
// returns the combined output.
func execMetrics(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// recentRows returns one raw row per value on consecutive recent days,
// newest last, so they land inside any live window.
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

func assertContainsAll(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n--- got ---\n%s", want, got)
		}
	}
}
