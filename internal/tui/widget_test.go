package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/pipeline"
)

func testWidget() widget {
	network := domain.Network{ID: "avalanche", Name: "Avalanche", Symbol: "AVAX"}
	metric := domain.Metric{
		ID:     "tx-count",
		Name:   "Transactions",
		Fields: []domain.FieldSpec{{Name: "tx_count", Kind: domain.KindSum, Unit: domain.UnitCount}},
	}
	return newWidget(0, nil, network, metric, "30D")
}

func seriesResult(sourceName string, values ...float64) *pipeline.Result {
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.Point{
			Timestamp: time.Date(2024, 6, 10+i, 0, 0, 0, 0, time.UTC),
			Value:     v,
		}
	}
	return &pipeline.Result{
		Series:     domain.Series{Network: "avalanche", Metric: "tx-count", Points: points},
		SourceName: sourceName,
	}
}

func TestWidget_LoadingToSuccess(t *testing.T) {
	w := testWidget()

	w, cmd := w.Reload()
	if cmd == nil {
		t.Fatal("expected a fetch command from Reload")
	}
	if !w.Loading() {
		t.Fatal("expected widget to be loading after Reload")
	}

	w, accepted := w.HandleLoaded(seriesLoadedMsg{
		widgetID:   0,
		generation: w.generation,
		result:     seriesResult("Supabase", 100, 200),
	})
	if !accepted {
		t.Fatal("expected current-generation response to be accepted")
	}
	if w.state != widgetSuccess {
		t.Errorf("state = %d, want widgetSuccess", w.state)
	}
	if len(w.result.Series.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(w.result.Series.Points))
	}
}

func TestWidget_LoadingToError(t *testing.T) {
	w := testWidget()
	w, _ = w.Reload()

	w, accepted := w.HandleError(seriesErrorMsg{
		widgetID:   0,
		generation: w.generation,
		err:        errors.New("fetch failed"),
	})
	if !accepted {
		t.Fatal("expected current-generation error to be accepted")
	}
	if w.state != widgetError {
		t.Errorf("state = %d, want widgetError", w.state)
	}
	if w.err == nil {
		t.Error("expected error to be recorded")
	}
	if w.result != nil {
		t.Error("expected no result in error state")
	}
}

func TestWidget_StaleGenerationDropped(t *testing.T) {
	w := testWidget()

	// Fetch A goes out, then the selection changes and fetch B goes out
	// before A resolves.
	w, _ = w.Reload()
	staleGen := w.generation
	w = w.WithRange("7D")
	w, _ = w.Reload()

	resultA := seriesResult("Supabase", 1, 2, 3)
	resultB := seriesResult("Supabase", 9)

	// A resolves after B was issued: it must be dropped.
	w, accepted := w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: staleGen, result: resultA})
	if accepted {
		t.Fatal("expected stale-generation response to be dropped")
	}
	if !w.Loading() {
		t.Error("expected widget to keep waiting for the current fetch")
	}

	// B resolves and wins.
	w, accepted = w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: w.generation, result: resultB})
	if !accepted {
		t.Fatal("expected current-generation response to be accepted")
	}
	if len(w.result.Series.Points) != 1 || w.result.Series.Points[0].Value != 9 {
		t.Errorf("expected B's series to be displayed, got %+v", w.result.Series.Points)
	}

	// A arriving even later must not overwrite B.
	w, accepted = w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: staleGen, result: resultA})
	if accepted {
		t.Fatal("expected late stale response to be dropped")
	}
	if len(w.result.Series.Points) != 1 || w.result.Series.Points[0].Value != 9 {
		t.Errorf("expected B's series to survive, got %+v", w.result.Series.Points)
	}
}

func TestWidget_StaleErrorDropped(t *testing.T) {
	w := testWidget()

	w, _ = w.Reload()
	staleGen := w.generation
	w, _ = w.Reload()

	w, accepted := w.HandleError(seriesErrorMsg{widgetID: 0, generation: staleGen, err: errors.New("slow failure")})
	if accepted {
		t.Fatal("expected stale error to be dropped")
	}
	if !w.Loading() {
		t.Error("expected widget to keep loading after a stale error")
	}
}

func TestWidget_OtherWidgetsMessageIgnored(t *testing.T) {
	w := testWidget()
	w, _ = w.Reload()

	w, accepted := w.HandleLoaded(seriesLoadedMsg{widgetID: 3, generation: w.generation, result: seriesResult("Supabase", 1)})
	if accepted {
		t.Fatal("expected another widget's message to be ignored")
	}
	if !w.Loading() {
		t.Error("expected state to be unchanged")
	}
}

func TestWidget_RangeChangeReentersLoading(t *testing.T) {
	w := testWidget()
	w, _ = w.Reload()
	w, _ = w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: w.generation, result: seriesResult("Supabase", 5)})
	if w.state != widgetSuccess {
		t.Fatalf("setup: expected success, got state %d", w.state)
	}
	prevGen := w.generation

	w = w.WithRange("ALL")
	w, cmd := w.Reload()

	if !w.Loading() {
		t.Error("expected range change to re-enter loading")
	}
	if w.generation != prevGen+1 {
		t.Errorf("generation = %d, want %d", w.generation, prevGen+1)
	}
	if w.result != nil {
		t.Error("expected previous result to be cleared")
	}
	if cmd == nil {
		t.Error("expected a fetch command")
	}
	if w.rangeToken != "ALL" {
		t.Errorf("rangeToken = %q, want %q", w.rangeToken, "ALL")
	}
}

func TestWidget_ErrorThenReloadRecovers(t *testing.T) {
	w := testWidget()
	w, _ = w.Reload()
	w, _ = w.HandleError(seriesErrorMsg{widgetID: 0, generation: w.generation, err: errors.New("down")})

	w, _ = w.Reload()
	if !w.Loading() {
		t.Fatal("expected reload from error state to enter loading")
	}
	if w.err != nil {
		t.Error("expected error to be cleared on reload")
	}

	w, accepted := w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: w.generation, result: seriesResult("Supabase", 7)})
	if !accepted || w.state != widgetSuccess {
		t.Errorf("expected recovery to success, got state %d", w.state)
	}
}

func TestWidget_EmptyResultIsSuccess(t *testing.T) {
	w := testWidget()
	w, _ = w.Reload()

	w, accepted := w.HandleLoaded(seriesLoadedMsg{widgetID: 0, generation: w.generation, result: seriesResult("Supabase")})
	if !accepted {
		t.Fatal("expected empty result to be accepted")
	}
	if w.state != widgetSuccess {
		t.Errorf("state = %d, want widgetSuccess", w.state)
	}
	if !w.empty() {
		t.Error("expected widget to report empty")
	}
}

func TestSourceStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *pipeline.Result
		want   string
	}{
		{"nil result", nil, "unknown"},
		{"primary", &pipeline.Result{SourceName: "Supabase"}, "live"},
		{"fallback", &pipeline.Result{SourceName: "CoinGecko", Fallback: true}, "fallback"},
		{"snapshot", &pipeline.Result{SourceName: pipeline.SnapshotSourceName}, "snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceStatus(tt.result); got != tt.want {
				t.Errorf("sourceStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
