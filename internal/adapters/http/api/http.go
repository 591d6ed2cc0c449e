// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/session"
	"github.com/okian/jobscout/internal/domain/types"
	"github.com/okian/jobscout/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Submit(ctx context.Context, params model.Parameters, resume string) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context, limit int) ([]*session.Session, error)
	Results(ctx context.Context, id string) ([]types.ResultRow, error)
	Cancel(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan model.Event, func(), error)
}

// Server wires HTTP routes for the search API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	searchesHandler *SearchesHandler
	streamHandler   *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{
		maxListLimit: defaultMaxListLimit,
		maxBodyBytes: defaultMaxBodyBytes,
		log:          logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		searchesHandler: NewSearchesHandler(deps, cfg),
		streamHandler:   NewStreamHandler(deps, cfg.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /searches", MetricsMiddleware(s.searchesHandler.HandleCreate, "searches"))
	mux.HandleFunc("GET /searches", MetricsMiddleware(s.searchesHandler.HandleList, "searches"))
	mux.HandleFunc("GET /searches/{id}", MetricsMiddleware(s.searchesHandler.HandleGet, "search"))
	mux.HandleFunc("DELETE /searches/{id}", MetricsMiddleware(s.searchesHandler.HandleCancel, "search"))
	mux.HandleFunc("GET /searches/{id}/results", MetricsMiddleware(s.searchesHandler.HandleResults, "results"))
	mux.HandleFunc("GET /searches/{id}/events", MetricsMiddleware(s.streamHandler.HandleEvents, "events"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, err))
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_parameters", wrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrStopped), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
