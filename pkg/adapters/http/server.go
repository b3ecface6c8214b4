// Package http exposes chart storage and validation over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/pfc"
	"github.com/aretw0/pfc/internal/presentation/graph"
	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds uploaded chart records.
const maxBodySize = 8 << 20

// Engine defines the chart operations served over HTTP.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*chart.Chart, error)
	Save(ctx context.Context, c *chart.Chart) error
	Delete(ctx context.Context, name string) error
	Validate(ctx context.Context, name string) (*validator.Report, error)
	Reduce(ctx context.Context, name string) (int, error)
	Flatten(ctx context.Context, name string) error
}

var _ Engine = (*pfc.Engine)(nil)

// Server holds the handler dependencies.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	streams  *StreamManager
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *handlerConfig) { c.logger = l }
}

// WithMetrics mounts /metrics for g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *handlerConfig) { c.gatherer = g }
}

// WithStreams shares a StreamManager, e.g. to publish reports produced
// outside of HTTP requests.
func WithStreams(sm *StreamManager) Option {
	return func(c *handlerConfig) { c.streams = sm }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	cfg := handlerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.streams == nil {
		cfg.streams = NewStreamManager(cfg.logger)
	}
	s := &Server{Engine: engine, Streams: cfg.streams, Logger: cfg.logger}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.ListCharts)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetChart)
			r.Put("/", s.PutChart)
			r.Delete("/", s.DeleteChart)
			r.Get("/graph", s.GetGraph)
			r.Post("/validate", s.ValidateChart)
			r.Post("/reduce", s.ReduceChart)
			r.Post("/flatten", s.FlattenChart)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrChartNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrInvalidName), errors.Is(err, chart.ErrInvalidRecord):
		status = http.StatusBadRequest
	case errors.Is(err, chart.ErrMultipleActions):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Warn(op+" rejected", "error", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pfc-http",
		"version": strings.TrimSpace(pfc.Version),
	})
}

// ListCharts handles the GET /charts request.
func (s *Server) ListCharts(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetChart handles the GET /charts/{name} request.
func (s *Server) GetChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.Engine.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Load", err)
		return
	}
	s.writeJSON(w, http.StatusOK, c.Snapshot())
}

// PutChart handles the PUT /charts/{name} request. The body is a JSON chart
// record; its name is taken from the path.
func (s *Server) PutChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var rec schema.Chart
	if err := json.Unmarshal(data, &rec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PutChart: invalid request body", "error", err)
		return
	}
	rec.Name = name
	c, err := chart.Restore(&rec, chart.WithExpressionParser(expression.Parser))
	if err != nil {
		s.fail(w, "Restore", err)
		return
	}
	if err := s.Engine.Save(r.Context(), c); err != nil {
		s.fail(w, "Save", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteChart handles the DELETE /charts/{name} request.
func (s *Server) DeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles the GET /charts/{name}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	c, err := s.Engine.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Load", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(c, nil))
}

// ValidateChart handles the POST /charts/{name}/validate request and
// publishes the report to event subscribers.
func (s *Server) ValidateChart(w http.ResponseWriter, r *http.Request) {
	report, err := s.Engine.Validate(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Validate", err)
		return
	}
	s.Streams.Publish(report)
	s.writeJSON(w, http.StatusOK, report)
}

// ReduceChart handles the POST /charts/{name}/reduce request.
func (s *Server) ReduceChart(w http.ResponseWriter, r *http.Request) {
	removed, err := s.Engine.Reduce(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Reduce", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// FlattenChart handles the POST /charts/{name}/flatten request.
func (s *Server) FlattenChart(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Flatten(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "Flatten", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
