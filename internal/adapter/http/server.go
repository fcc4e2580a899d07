// Package http serves the tool-call surface plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tyson-swetnam/raws-mcp/internal/observability"
	"github.com/tyson-swetnam/raws-mcp/internal/tools"
)

// maxRequestBody bounds tool request payloads; legitimate requests are tiny.
const maxRequestBody = 64 << 10

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessFunc adapts a function to the ReadinessChecker interface.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// Server exposes the tool routes alongside /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(
	addr string,
	svc *tools.Service,
	ready ReadinessChecker,
	metrics *observability.Metrics,
	clk clockwork.Clock,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:  logger,
		metrics: metrics,
		clock:   clk,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /tools/get_current_conditions", toolHandler(s, "get_current_conditions",
		func(ctx context.Context, req tools.CurrentConditionsRequest) (any, *tools.ToolError) {
			resp, terr := svc.CurrentConditions(ctx, req)
			if terr != nil {
				return nil, terr
			}
			return resp, nil
		}))
	mux.HandleFunc("POST /tools/search_stations", toolHandler(s, "search_stations",
		func(ctx context.Context, req tools.SearchStationsRequest) (any, *tools.ToolError) {
			stations, terr := svc.SearchStations(ctx, req)
			if terr != nil {
				return nil, terr
			}
			return stations, nil
		}))
	mux.HandleFunc("POST /tools/get_historical_data", toolHandler(s, "get_historical_data",
		func(ctx context.Context, req tools.HistoryRequest) (any, *tools.ToolError) {
			series, terr := svc.History(ctx, req)
			if terr != nil {
				return nil, terr
			}
			return series, nil
		}))
	mux.HandleFunc("POST /tools/calculate_fire_indices", toolHandler(s, "calculate_fire_indices",
		func(ctx context.Context, req tools.FireIndicesRequest) (any, *tools.ToolError) {
			resp, terr := svc.FireIndices(ctx, req)
			if terr != nil {
				return nil, terr
			}
			return resp, nil
		}))

	return s
}

// toolHandler wraps one typed tool operation: decode the JSON request, run
// the operation, and write the uniform result envelope. The envelope's HTTP
// status mirrors the tool error's status; successes are always 200.
func toolHandler[Req any](s *Server, name string, op func(context.Context, Req) (any, *tools.ToolError)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()

		var req Req
		body := http.MaxBytesReader(w, r.Body, maxRequestBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.metrics.ToolCalls.WithLabelValues(name, "error").Inc()
			writeJSON(w, http.StatusBadRequest, tools.Fail(&tools.ToolError{
				Code:    "MALFORMED_REQUEST",
				Message: "request body must be a JSON object",
				Status:  http.StatusBadRequest,
			}))
			return
		}

		data, terr := op(r.Context(), req)
		elapsed := s.clock.Now().Sub(start)
		s.metrics.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		if terr != nil {
			s.metrics.ToolCalls.WithLabelValues(name, "error").Inc()
			s.logger.Warn("tool call failed", "tool", name, "code", terr.Code, "error", terr.Message)
			writeJSON(w, terr.Status, tools.Fail(terr))
			return
		}

		s.metrics.ToolCalls.WithLabelValues(name, "success").Inc()
		writeJSON(w, http.StatusOK, tools.Succeed(name, data, s.clock.Now().UTC(), elapsed))
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
