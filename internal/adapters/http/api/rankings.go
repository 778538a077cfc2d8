package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

// RankingDependencies defines the ranking operations the handlers need.
type RankingDependencies interface {
	Rank(ctx context.Context, req model.RankRequest) (model.RankResponse, error)
	Submit(ctx context.Context, req model.RankRequest, key string) (model.Task, bool, error)
	Task(ctx context.Context, id string) (model.Task, error)
}

// RankingHandler handles synchronous and asynchronous ranking requests.
type RankingHandler struct {
	deps         RankingDependencies
	validate     *validator.Validate
	defaultLimit int
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies, defaultLimit int) *RankingHandler {
	if defaultLimit < 0 {
		defaultLimit = 0
	}
	return &RankingHandler{
		deps:         deps,
		validate:     newValidator(),
		defaultLimit: defaultLimit,
	}
}

// HandleRank handles POST /rank requests.
func (h *RankingHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rankRequest
	if err := h.decode(w, r, &req); err != nil {
		writeFailure(w, op, err)
		return
	}

	resp, err := h.deps.Rank(r.Context(), req.toModel(h.defaultLimit))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newRankResponse(resp))
}

// HandleSubmit handles POST /rankings requests.
func (h *RankingHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_ranking"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submitRequest
	if err := h.decode(w, r, &req); err != nil {
		writeFailure(w, op, err)
		return
	}

	task, duplicate, err := h.deps.Submit(r.Context(), req.toModel(h.defaultLimit), req.IdempotencyKey)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, newTaskResponse(task, duplicate))
}

// HandleGetTask handles GET /rankings/{task_id} requests.
func (h *RankingHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranking"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/rankings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	task, err := h.deps.Task(r.Context(), id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(task, false))
}

// decode reads a single JSON object and validates it.
func (h *RankingHandler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return WrapKind("decode", ErrBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewKind("decode: trailing data", ErrBadRequest)
	}
	return h.validate.Struct(dst)
}
