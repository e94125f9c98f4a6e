package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// Service is the execution bridge: it merges terminal-call vars into a spec,
// finalizes it and issues the executor calls each terminal operation needs.
type Service struct {
	exec Executor
}

// New creates a search service.
func New(exec Executor) *Service {
	return &Service{exec: exec}
}

// Find fetches a single document by id. The set carries at most one hit.
func (s *Service) Find(
	ctx context.Context, collection string, base spec.Spec, id string, vars ...spec.Fragment,
) (result.Set, error) {
	if id == "" {
		return result.Set{}, fmt.Errorf("%w: id", domain.ErrEmptyArgument)
	}
	return s.fetch(ctx, collection, base, []string{id}, vars)
}

// FindMany fetches documents by id, preserving the order of ids.
func (s *Service) FindMany(
	ctx context.Context, collection string, base spec.Spec, ids []string, vars ...spec.Fragment,
) (result.Set, error) {
	if len(ids) == 0 {
		return result.Set{}, fmt.Errorf("%w: ids list is empty", domain.ErrEmptyArgument)
	}
	return s.fetch(ctx, collection, base, ids, vars)
}

func (s *Service) fetch(
	ctx context.Context, collection string, base spec.Spec, ids []string, vars []spec.Fragment,
) (result.Set, error) {
	merged := mergeAll(base, vars).Merge(spec.Fragment{IDs: ids})
	req, err := spec.Finalize(merged)
	if err != nil {
		return result.Set{}, err
	}
	set, err := s.exec.FetchByIDs(ctx, collection, &req)
	if err != nil {
		return result.Set{}, fmt.Errorf("fetch by ids: %w", err)
	}
	return set.WithRaw(req.Raw), nil
}

// First returns a set holding at most the first matching document.
func (s *Service) First(
	ctx context.Context, collection string, base spec.Spec, vars ...spec.Fragment,
) (result.Set, error) {
	return s.search(ctx, collection, base.Size(1), vars)
}

// Last counts the matches, then fetches the one at offset count-1. The two
// calls are not atomic; writes in between may shift the answer.
// With no matches only the count is issued.
func (s *Service) Last(
	ctx context.Context, collection string, base spec.Spec, vars ...spec.Fragment,
) (result.Set, error) {
	n, err := s.Count(ctx, collection, base, vars...)
	if err != nil {
		return result.Set{}, err
	}
	if n == 0 {
		raw := mergeAll(base, vars).ParamValues().Raw()
		return result.NewSet(nil, 0).WithRaw(raw), nil
	}
	paged := base.Params(spec.Params{spec.ParamFrom: n - 1, spec.ParamSize: 1})
	return s.search(ctx, collection, paged, vars)
}

// All runs one bounded search of params.size documents (spec.DefaultSize when unset).
func (s *Service) All(
	ctx context.Context, collection string, base spec.Spec, vars ...spec.Fragment,
) (result.Set, error) {
	return s.search(ctx, collection, base, vars)
}

// ScanAll delivers every matching document to fn in batches of params.size.
// params.scroll sets the cursor lifetime. An error from fn stops the scan.
func (s *Service) ScanAll(
	ctx context.Context, collection string, base spec.Spec, fn func(result.Set) error, vars ...spec.Fragment,
) error {
	req, err := spec.Finalize(mergeAll(base, vars))
	if err != nil {
		return err
	}
	if req.Limit == 0 {
		return fmt.Errorf("%w: scan batch size must be positive", domain.ErrInvalidParams)
	}
	if err := s.exec.Scan(ctx, collection, &req, fn); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

// Count returns the number of documents matching the spec.
func (s *Service) Count(
	ctx context.Context, collection string, base spec.Spec, vars ...spec.Fragment,
) (int, error) {
	req, err := spec.Finalize(mergeAll(base, vars))
	if err != nil {
		return 0, err
	}
	n, err := s.exec.Count(ctx, collection, &req)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *Service) search(
	ctx context.Context, collection string, base spec.Spec, vars []spec.Fragment,
) (result.Set, error) {
	req, err := spec.Finalize(mergeAll(base, vars))
	if err != nil {
		return result.Set{}, err
	}
	set, err := s.exec.Search(ctx, collection, &req)
	if err != nil {
		return result.Set{}, fmt.Errorf("search: %w", err)
	}
	return set.WithRaw(req.Raw), nil
}

func mergeAll(base spec.Spec, vars []spec.Fragment) spec.Spec {
	for _, v := range vars {
		base = base.Merge(v)
	}
	return base
}
