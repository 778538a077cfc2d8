// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/TJ-dotcom/ApexMatchAI/internal/adapters/repository"
	service "github.com/TJ-dotcom/ApexMatchAI/internal/app"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/filter"
	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/ranking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rankingHandler *RankingHandler
}

// NewServer creates a new API server with all handlers. defaultLimit
// applies when a request omits limit.
func NewServer(deps Dependencies, defaultLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		rankingHandler: NewRankingHandler(deps, defaultLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankingHandler.HandleRank, "rank"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingHandler.HandleSubmit, "rankings"))
	mux.HandleFunc("/rankings/", MetricsMiddleware(s.rankingHandler.HandleGetTask, "rankings_get"))
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

// writeFailure maps a handler error onto a status and error code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(verrs)))
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ranking.ErrInvalidLimit),
		errors.Is(err, filter.ErrInvalidExpression),
		errors.Is(err, service.ErrTooManyJobs),
		errors.Is(err, service.ErrLimitTooHigh):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, filter.ErrEvaluation):
		writeError(w, http.StatusUnprocessableEntity, "filter_error", Wrap(op, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

type fieldError struct{ msg string }

func (e fieldError) Error() string { return e.msg }

func validationMessage(verrs validator.ValidationErrors) error {
	if len(verrs) == 0 {
		return fieldError{"validation error: invalid request"}
	}
	ve := verrs[0]
	return fieldError{"validation error: " + ve.Namespace() + " - " + ve.Tag()}
}

// jsonFieldName reports struct fields by their JSON name in validation errors.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
