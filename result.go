package vecscope

import (
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
)

// Hit is one typed document of a result.
type Hit[T any] struct {
	ID    string
	Score float64
	Item  T
	// Fields holds the stored hash as returned by the backend.
	Fields map[string]string
}

// Result is the outcome of a search, in backend order.
type Result[T any] struct {
	Hits  []Hit[T]
	Total int
	// Raw is set when the spec asked for raw results (Scope.Raw).
	Raw bool
}

// Items returns the typed documents.
func (r *Result[T]) Items() []T {
	out := make([]T, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Item
	}
	return out
}

// Found is the answer of a single-document terminal call.
// OK is false when nothing matched or the spec asked for raw results;
// Result is always populated.
type Found[T any] struct {
	Item   T
	OK     bool
	Result *Result[T]
}

func toResult[T any](meta *schemaMeta, set result.Set) (*Result[T], error) {
	hits := set.Hits()
	out := &Result[T]{Hits: make([]Hit[T], 0, len(hits)), Total: set.Total(), Raw: set.Raw()}
	for _, h := range hits {
		item, err := decode[T](meta, h.ID(), h.Fields())
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", h.ID(), err)
		}
		out.Hits = append(out.Hits, Hit[T]{ID: h.ID(), Score: h.Score(), Item: item, Fields: h.Fields()})
	}
	return out, nil
}

func toFound[T any](meta *schemaMeta, set result.Set) (Found[T], error) {
	res, err := toResult[T](meta, set)
	if err != nil {
		return Found[T]{}, err
	}
	f := Found[T]{Result: res}
	if !res.Raw && len(res.Hits) > 0 {
		f.Item, f.OK = res.Hits[0].Item, true
	}
	return f, nil
}
