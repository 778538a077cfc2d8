package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/model"
)

// Upper bound on a request body.
const maxBodyBytes = 32 << 20

// jobDTO mirrors the OpenAPI Job schema.
type jobDTO struct {
	Title string `json:"title" validate:"max=512"`
	Text  string `json:"text" validate:"max=200000"`
}

// rankRequest mirrors the OpenAPI RankRequest schema for POST /rank.
type rankRequest struct {
	Resume string   `json:"resume" validate:"max=200000"`
	Jobs   []jobDTO `json:"jobs" validate:"dive"`
	Limit  *int     `json:"limit" validate:"omitempty,gte=0"`
	Rerank *bool    `json:"rerank"`
	Filter string   `json:"filter" validate:"max=2048"`
}

// submitRequest mirrors the OpenAPI SubmitRequest schema for POST /rankings.
type submitRequest struct {
	rankRequest
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128,printascii"`
}

// toModel applies defaults. Reranking is on unless disabled explicitly.
func (r *rankRequest) toModel(defaultLimit int) model.RankRequest {
	req := model.RankRequest{
		Resume: r.Resume,
		Jobs:   make([]model.JobPosting, len(r.Jobs)),
		Limit:  defaultLimit,
		Rerank: true,
		Filter: r.Filter,
	}
	for i, j := range r.Jobs {
		req.Jobs[i] = model.JobPosting{Text: j.Text, Title: j.Title}
	}
	if r.Limit != nil {
		req.Limit = *r.Limit
	}
	if r.Rerank != nil {
		req.Rerank = *r.Rerank
	}
	return req
}

// rankResponse is the body of POST /rank.
type rankResponse struct {
	Matches      []model.MatchResult `json:"matches"`
	Degradations []model.Degradation `json:"degradations,omitempty"`
	Count        int                 `json:"count"`
}

func newRankResponse(r model.RankResponse) rankResponse {
	matches := r.Matches
	if matches == nil {
		matches = []model.MatchResult{}
	}
	return rankResponse{Matches: matches, Degradations: r.Degradations, Count: len(matches)}
}

// taskResponse is the body of POST /rankings and GET /rankings/{id}.
type taskResponse struct {
	TaskID    string           `json:"task_id"`
	Status    model.TaskStatus `json:"status"`
	Duplicate bool             `json:"duplicate,omitempty"`
	Result    *rankResponse    `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

func newTaskResponse(t model.Task, duplicate bool) taskResponse { //nolint:gocritic // hugeParam
	resp := taskResponse{
		TaskID:    t.ID,
		Status:    t.Status,
		Duplicate: duplicate,
		Error:     t.Error,
		CreatedAt: t.CreatedAt.UTC().Format(rfc3339Milli),
		UpdatedAt: t.UpdatedAt.UTC().Format(rfc3339Milli),
	}
	if t.Status == model.TaskCompleted {
		r := newRankResponse(t.Result)
		resp.Result = &r
	}
	return resp
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// newValidator returns a validator reporting JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}
