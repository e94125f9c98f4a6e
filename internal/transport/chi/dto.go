package chi

import (
	"fmt"

	"github.com/kailas-cloud/vecscope"
	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	"github.com/kailas-cloud/vecscope/internal/usecase/query"
	"github.com/kailas-cloud/vecscope/internal/version"
)

// QueryRequest is the body of POST /v1/{model}/{op}.
//
//	{"apply": [{"name": "by_color", "args": [{"color": "red"}]}],
//	 "fragment": {"sort": [{"field": "price", "order": "desc"}], "size": 20}}
type QueryRequest struct {
	Apply    []ApplyRequest `json:"apply,omitempty"`
	Fragment spec.Document  `json:"fragment"`
}

// ApplyRequest names a scope or template and its arguments.
type ApplyRequest struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}

func (r *QueryRequest) toQuery() (query.Request, error) {
	frag, err := r.Fragment.Fragment()
	if err != nil {
		return query.Request{}, fmt.Errorf("%w: fragment: %w", domain.ErrInvalidParams, err)
	}
	out := query.Request{Fragment: frag, Apply: make([]query.Application, 0, len(r.Apply))}
	for i, a := range r.Apply {
		if a.Name == "" {
			return query.Request{}, fmt.Errorf("%w: apply %d: name is required", domain.ErrInvalidParams, i)
		}
		out.Apply = append(out.Apply, query.Application{Name: a.Name, Args: a.Args})
	}
	return out, nil
}

// HitResponse is one document of a result.
type HitResponse struct {
	ID     string            `json:"id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields"`
}

// ResultResponse is returned by search, first and last.
type ResultResponse struct {
	Total int           `json:"total"`
	Hits  []HitResponse `json:"hits"`
}

// CountResponse is returned by count.
type CountResponse struct {
	Count int `json:"count"`
}

// ModelResponse describes one served model.
type ModelResponse struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Build  version.Info      `json:"build"`
}

func toHits(res *vecscope.Result[vecscope.Document]) []HitResponse {
	hits := make([]HitResponse, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = HitResponse{ID: h.ID, Score: h.Score, Fields: h.Fields}
	}
	return hits
}

func toResultResponse(res *vecscope.Result[vecscope.Document]) ResultResponse {
	if res == nil {
		return ResultResponse{Hits: []HitResponse{}}
	}
	return ResultResponse{Total: res.Total, Hits: toHits(res)}
}
