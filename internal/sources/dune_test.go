package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
)

func newTestDune(t *testing.T, serverURL string) *DuneClient {
	t.Helper()
	c := NewDuneClient("test-key")
	c.baseURL = serverURL
	c.poll = time.Millisecond
	return c
}

func TestDune_Run_PollsUntilComplete(t *testing.T) {
	statusCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-DUNE-API-KEY") != "test-key" {
			t.Error("expected X-DUNE-API-KEY header")
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/query/4488181/execute":
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"})
		case r.URL.Path == "/execution/exec-1/status":
			statusCalls++
			state := "QUERY_STATE_EXECUTING"
			if statusCalls >= 3 {
				state = duneStateCompleted
			}
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": state})
		case r.URL.Path == "/execution/exec-1/results":
			json.NewEncoder(w).Encode(map[string]any{
				"state": duneStateCompleted,
				"result": map[string]any{
					"rows": []map[string]any{
						{"day": "2024-01-01 00:00:00.000 UTC", "tx_count": 1200},
						{"day": "2024-01-02 00:00:00.000 UTC", "tx_count": 1350},
					},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestDune(t, srv.URL)
	rows, err := c.Run(context.Background(), 4488181)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if statusCalls < 3 {
		t.Errorf("expected at least 3 status polls, got %d", statusCalls)
	}
}

func TestDune_Run_FailureStateIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"})
		default:
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": duneStateFailed})
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestDune(t, srv.URL)
	_, err := c.Run(context.Background(), 4488181)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), duneStateFailed) {
		t.Errorf("expected terminal state in error, got: %v", err)
	}
}

func TestDune_Run_ContextCancelStopsPolling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"})
		default:
			// Never completes.
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": "QUERY_STATE_EXECUTING"})
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := newTestDune(t, srv.URL)
	_, err := c.Run(ctx, 4488181)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got: %v", err)
	}
}

func TestDune_Execute_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid API Key"})
	}))
	t.Cleanup(srv.Close)

	c := newTestDune(t, srv.URL)
	_, err := c.Execute(context.Background(), 4488181)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestDune_FetchSeries_ConvertsDateColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": "QUERY_STATE_PENDING"})
		case strings.HasSuffix(r.URL.Path, "/status"):
			json.NewEncoder(w).Encode(map[string]any{"execution_id": "exec-1", "state": duneStateCompleted})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"state": duneStateCompleted,
				"result": map[string]any{
					"rows": []map[string]any{
						{"day": "2024-01-05 00:00:00.000 UTC", "dex_volume": 1.5e7},
						{"day": "2023-06-01 00:00:00.000 UTC", "dex_volume": 9.0e6}, // outside window
						{"note": "no date column"},
					},
				},
			})
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestDune(t, srv.URL)
	query := seriesQuery(t, "avalanche", "volume", utcDate(2024, time.January, 1), utcDate(2024, time.March, 1))

	rows, err := c.FetchSeries(context.Background(), query)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row inside window, got %d", len(rows))
	}
	if !rows[0].Timestamp.Equal(utcDate(2024, time.January, 5)) {
		t.Errorf("rows[0].Timestamp = %v, want 2024-01-05", rows[0].Timestamp)
	}
}

func TestRegisterDune_MissingKey(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterDune()

	_, err := Get("dune", auth.NewMockStore())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got: %v", err)
	}
}

func TestEcosystems_SortedWithQueries(t *testing.T) {
	names := Ecosystems()
	if len(names) == 0 {
		t.Fatal("expected at least one ecosystem")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("expected sorted ecosystems, got %v", names)
	}
	for _, name := range names {
		if len(QueriesFor(name)) == 0 {
			t.Errorf("ecosystem %q has no queries", name)
		}
	}
}
