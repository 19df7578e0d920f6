// Package api exposes the dashboard pipeline over HTTP: a small
// read-only JSON API plus a websocket stream that pushes refreshed
// series to subscribed frontends.
//
// The server owns no fetching logic. Every endpoint resolves through
// the same pipeline.Runner the CLI and TUI use, so a chart in the
// terminal and a chart in a browser are computed identically.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/pipeline"
	"github.com/yashh-d/chainpulse/internal/timerange"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the HTTP front end over the pipeline.
type Server struct {
	runner *pipeline.Runner
	logger *zap.Logger
	hub    *Hub
}

// New returns a Server that answers queries through runner.
func New(runner *pipeline.Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		runner: runner,
		logger: logger,
		hub:    newHub(logger),
	}
}

// Hub returns the websocket hub, so refresh loops can broadcast into it.
func (s *Server) Hub() *Hub { return s.hub }

// BroadcastSeries pushes a refreshed series result to websocket clients.
func (s *Server) BroadcastSeries(result *pipeline.Result) {
	s.hub.Broadcast("series", newSeriesResponse(result))
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/networks", s.handleNetworks)
		r.Get("/ranges", s.handleRanges)
		r.Get("/series/{network}/{metric}", s.handleSeries)
		r.Get("/distribution/{network}", s.handleDistribution)
	})

	r.Get("/ws", s.hub.handleWS)

	return r
}

// Start runs the server until ctx is cancelled, then drains websocket
// clients and shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("api server shutting down")
	s.hub.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

type networkResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Symbol  string   `json:"symbol"`
	Metrics []string `json:"metrics"`
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	list := networks.List()
	out := make([]networkResponse, 0, len(list))
	for _, n := range list {
		metrics := networks.MetricsFor(n.ID)
		ids := make([]string, 0, len(metrics))
		for _, m := range metrics {
			ids = append(ids, m.ID)
		}
		out = append(out, networkResponse{ID: n.ID, Name: n.Name, Symbol: n.Symbol, Metrics: ids})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens":  timerange.Tokens(),
		"default": timerange.DefaultToken,
	})
}

type seriesResponse struct {
	Network  string             `json:"network"`
	Metric   string             `json:"metric"`
	Range    string             `json:"range,omitempty"`
	Window   domain.RangeWindow `json:"window"`
	Source   string             `json:"source"`
	Fallback bool               `json:"fallback,omitempty"`
	Points   []domain.Point     `json:"points"`
}

func newSeriesResponse(result *pipeline.Result) seriesResponse {
	points := result.Series.Points
	if points == nil {
		points = []domain.Point{}
	}
	return seriesResponse{
		Network:  result.Network.ID,
		Metric:   result.Metric.ID,
		Range:    result.RangeToken,
		Window:   result.Window,
		Source:   result.SourceName,
		Fallback: result.Fallback,
		Points:   points,
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	metric := chi.URLParam(r, "metric")
	rangeToken := r.URL.Query().Get("range")

	result, err := s.runner.RunSeries(r.Context(), network, metric, rangeToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSeriesResponse(result))
}

type distributionResponse struct {
	Network string                     `json:"network"`
	By      string                     `json:"by"`
	Range   string                     `json:"range,omitempty"`
	Source  string                     `json:"source"`
	Slices  []domain.DistributionSlice `json:"slices"`
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	by := r.URL.Query().Get("by")
	if by == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "missing required query parameter: by",
		})
		return
	}
	rangeToken := r.URL.Query().Get("range")

	result, err := s.runner.RunDistribution(r.Context(), network, by, rangeToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	slices := result.Slices
	if slices == nil {
		slices = []domain.DistributionSlice{}
	}
	writeJSON(w, http.StatusOK, distributionResponse{
		Network: result.Network.ID,
		By:      result.By,
		Range:   result.RangeToken,
		Source:  result.SourceName,
		Slices:  slices,
	})
}

// writeError maps pipeline failures to HTTP statuses. Upstream
// credential and availability problems surface as gateway errors, since
// from the API consumer's view this server is a proxy over the sources.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnavailable),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNoCredentials):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		return
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// --- Middleware ---

// corsMiddleware allows any origin. The API is read-only and carries no
// credentials, so permissive CORS is safe.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one structured line per request with a generated
// request ID. The websocket endpoint is skipped: its connections are
// long-lived and logged by the hub instead.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
