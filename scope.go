package vecscope

import (
	"context"
	"fmt"
	"maps"

	"github.com/kailas-cloud/vecscope/internal/domain/scope"
	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	searchuc "github.com/kailas-cloud/vecscope/internal/usecase/search"
)

// Scope is an immutable query specification bound to a model. Builder
// methods return a new Scope; terminal methods (Find, FindMany, First, Last,
// All, ScanAll, Count) run it.
type Scope[T any] struct {
	model *Model[T]
	spec  spec.Spec
}

func (s Scope[T]) with(next spec.Spec) Scope[T] {
	return Scope[T]{model: s.model, spec: next}
}

// Spec returns the accumulated specification.
func (s Scope[T]) Spec() Spec { return s.spec }

// Query sets the free-text query; the last call wins.
func (s Scope[T]) Query(text string) Scope[T] { return s.with(s.spec.Query(text)) }

// Terms adds exact term matches. A nil value requires the field to be missing.
func (s Scope[T]) Terms(values map[string]any) Scope[T] { return s.with(s.spec.Terms(values)) }

// Filters appends filter conditions.
func (s Scope[T]) Filters(conds ...Condition) Scope[T] { return s.with(s.spec.Filters(conds...)) }

// Sort appends sort keys.
func (s Scope[T]) Sort(keys ...SortKey) Scope[T] { return s.with(s.spec.Sort(keys...)) }

// Fields limits the returned fields.
func (s Scope[T]) Fields(names ...string) Scope[T] { return s.with(s.spec.Fields(names...)) }

// Size sets the number of results per page (or per scan batch).
func (s Scope[T]) Size(n int) Scope[T] { return s.with(s.spec.Size(n)) }

// Page selects the n-th page of Size results, starting at 1.
func (s Scope[T]) Page(n int) Scope[T] { return s.with(s.spec.Page(n)) }

// Params shallow-merges backend parameters.
func (s Scope[T]) Params(p Params) Scope[T] { return s.with(s.spec.Params(p)) }

// Raw makes single-document terminals return the whole result with Found.OK unset.
func (s Scope[T]) Raw() Scope[T] { return s.with(s.spec.Raw()) }

// Merge merges an arbitrary fragment.
func (s Scope[T]) Merge(f Fragment) Scope[T] { return s.with(s.spec.Merge(f)) }

// Apply extends s with a template or a named scope.
//
// Templates are looked up first and expanded against the variables of s,
// overlaid with args[0] when it is a map[string]any or Params. Otherwise the
// named scope is called with args and its specification merged into s.
// Names that match neither fail with ErrUnknownMethod.
func (s Scope[T]) Apply(name string, args ...any) (Scope[T], error) {
	m := s.model
	if m == nil {
		return s, fmt.Errorf("%w: %q on a scope without a model", ErrUnknownMethod, name)
	}

	res := scope.Resolver{Templates: m.templates, Scopes: m.scopes}.Resolve(name)
	switch res.Kind {
	case scope.KindTemplate:
		vars := s.spec.Variables()
		if len(args) > 0 {
			extra, err := templateVars(args[0])
			if err != nil {
				return s, fmt.Errorf("template %q: %w", name, err)
			}
			maps.Copy(vars, extra)
		}
		f, err := m.templates.ExpandTemplate(name, vars)
		if err != nil {
			return s, fmt.Errorf("model %s: %w", m.name, err)
		}
		return s.Merge(f), nil
	case scope.KindScope:
		child, err := m.Call(name, args...)
		if err != nil {
			return s, err
		}
		return s.with(spec.MergeSpec(s.spec, child.spec)), nil
	default:
		return s, fmt.Errorf("model %s: %w", m.name, res.Err())
	}
}

func templateVars(arg any) (map[string]any, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case Params:
		return map[string]any(v), nil
	default:
		return nil, fmt.Errorf("%w: template variables must be a map, got %T", ErrInvalidParams, arg)
	}
}

// Find fetches one document by id. Found.OK is false when it does not exist.
func (s Scope[T]) Find(ctx context.Context, id string, vars ...Vars) (Found[T], error) {
	run, err := s.runner()
	if err != nil {
		return Found[T]{}, err
	}
	set, err := run.Find(ctx, s.model.name, s.spec, id, vars...)
	if err != nil {
		return Found[T]{}, s.wrap("find", err)
	}
	return toFound[T](s.model.meta, set)
}

// FindMany fetches documents by id, in the order given. Missing ids are skipped.
func (s Scope[T]) FindMany(ctx context.Context, ids []string, vars ...Vars) (*Result[T], error) {
	run, err := s.runner()
	if err != nil {
		return nil, err
	}
	set, err := run.FindMany(ctx, s.model.name, s.spec, ids, vars...)
	if err != nil {
		return nil, s.wrap("find many", err)
	}
	return toResult[T](s.model.meta, set)
}

// First returns the first matching document.
func (s Scope[T]) First(ctx context.Context, vars ...Vars) (Found[T], error) {
	run, err := s.runner()
	if err != nil {
		return Found[T]{}, err
	}
	set, err := run.First(ctx, s.model.name, s.spec, vars...)
	if err != nil {
		return Found[T]{}, s.wrap("first", err)
	}
	return toFound[T](s.model.meta, set)
}

// Last returns the last matching document. It counts first and then fetches
// the final offset; the two calls are not atomic.
func (s Scope[T]) Last(ctx context.Context, vars ...Vars) (Found[T], error) {
	run, err := s.runner()
	if err != nil {
		return Found[T]{}, err
	}
	set, err := run.Last(ctx, s.model.name, s.spec, vars...)
	if err != nil {
		return Found[T]{}, s.wrap("last", err)
	}
	return toFound[T](s.model.meta, set)
}

// All returns one page of Size documents (10 when unset).
func (s Scope[T]) All(ctx context.Context, vars ...Vars) (*Result[T], error) {
	run, err := s.runner()
	if err != nil {
		return nil, err
	}
	set, err := run.All(ctx, s.model.name, s.spec, vars...)
	if err != nil {
		return nil, s.wrap("all", err)
	}
	return toResult[T](s.model.meta, set)
}

// ScanAll streams every matching document to fn in batches of Size.
// params.scroll sets the server cursor lifetime. An error from fn stops the
// scan and is returned wrapped.
func (s Scope[T]) ScanAll(ctx context.Context, fn func(*Result[T]) error, vars ...Vars) error {
	run, err := s.runner()
	if err != nil {
		return err
	}
	err = run.ScanAll(ctx, s.model.name, s.spec, func(set result.Set) error {
		batch, err := toResult[T](s.model.meta, set)
		if err != nil {
			return err
		}
		return fn(batch)
	}, vars...)
	if err != nil {
		return s.wrap("scan all", err)
	}
	return nil
}

// Count returns the number of matching documents.
func (s Scope[T]) Count(ctx context.Context, vars ...Vars) (int, error) {
	run, err := s.runner()
	if err != nil {
		return 0, err
	}
	n, err := run.Count(ctx, s.model.name, s.spec, vars...)
	if err != nil {
		return 0, s.wrap("count", err)
	}
	return n, nil
}

// runner returns the execution bridge behind s, or ErrUnboundScope for a
// scope that was not derived from a model.
func (s Scope[T]) runner() (*searchuc.Service, error) {
	if s.model == nil || s.model.client == nil || s.model.client.search == nil {
		return nil, ErrUnboundScope
	}
	return s.model.client.search, nil
}

func (s Scope[T]) wrap(op string, err error) error {
	return fmt.Errorf("%s %s: %w", s.model.name, op, err)
}
