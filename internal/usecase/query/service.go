// Package query serves config-defined models over the gateway: it composes
// named scopes, templates and request fragments and runs terminal operations.
package query

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope"
	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	logpkg "github.com/kailas-cloud/vecscope/internal/logger"
)

type model = vecscope.Model[vecscope.Document]

// Service runs queries against the configured models.
type Service struct {
	models map[string]*model
	names  []string
	limits Limits
	logger *zap.Logger
}

// New builds one model per definition and registers its fixed scopes.
func New(client *vecscope.Client, defs []ModelDefinition, limits Limits, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		models: make(map[string]*model, len(defs)),
		limits: limits,
		logger: logger,
	}

	for _, def := range defs {
		if _, dup := s.models[def.Name]; dup {
			return nil, fmt.Errorf("model %q defined twice", def.Name)
		}

		base := def.Base
		if _, ok := base.Params[spec.ParamSize]; !ok && limits.DefaultSize > 0 {
			base.Params = base.Params.Merge(spec.Params{spec.ParamSize: limits.DefaultSize})
		}

		m, err := vecscope.NewModel[vecscope.Document](client, def.Name,
			vecscope.WithIndexFields(def.Fields...),
			vecscope.WithBaseFragment(base),
		)
		if err != nil {
			return nil, fmt.Errorf("build model: %w", err)
		}

		// fixed scopes skip the base, it is already part of every Scoped() chain
		for _, name := range slices.Sorted(maps.Keys(def.Scopes)) {
			if err := m.Scope(name, m.Unscoped().Merge(def.Scopes[name])); err != nil {
				return nil, fmt.Errorf("register scope: %w", err)
			}
		}

		s.models[def.Name] = m
		s.names = append(s.names, def.Name)
	}
	return s, nil
}

// Models lists served model names in definition order.
func (s *Service) Models() []string { return slices.Clone(s.names) }

// Scopes lists the fixed scopes of a model.
func (s *Service) Scopes(name string) ([]string, error) {
	m, err := s.model(name)
	if err != nil {
		return nil, err
	}
	return m.Scopes(), nil
}

// Get fetches one document by id, optionally projected onto fields.
func (s *Service) Get(ctx context.Context, name, id string, fields []string) (vecscope.Found[vecscope.Document], error) {
	m, err := s.model(name)
	if err != nil {
		return vecscope.Found[vecscope.Document]{}, err
	}
	var vars []vecscope.Vars
	if len(fields) > 0 {
		vars = append(vars, vecscope.Vars{Params: spec.Params{spec.ParamFields: fields}})
	}
	found, err := m.Find(ctx, id, vars...)
	if err != nil {
		return vecscope.Found[vecscope.Document]{}, fmt.Errorf("get document: %w", err)
	}
	return found, nil
}

// Search runs a result-returning operation: search, first or last.
// first and last return a result holding at most one hit.
func (s *Service) Search(ctx context.Context, name string, op Op, req Request) (*vecscope.Result[vecscope.Document], error) {
	m, err := s.model(name)
	if err != nil {
		return nil, err
	}
	sc, err := s.compose(m.Scoped(), req)
	if err != nil {
		return nil, err
	}
	if err := checkSize(sc, s.limits.MaxSize); err != nil {
		return nil, err
	}

	log := logpkg.From(ctx)
	log.Debug("query", zap.String("model", name), zap.String("op", string(op)), zap.Int("apply", len(req.Apply)))

	switch op {
	case OpSearch:
		return sc.All(ctx)
	case OpFirst:
		found, err := sc.First(ctx)
		if err != nil {
			return nil, err
		}
		return found.Result, nil
	case OpLast:
		found, err := sc.Last(ctx)
		if err != nil {
			return nil, err
		}
		return found.Result, nil
	default:
		return nil, fmt.Errorf("%w: operation %q", domain.ErrUnknownMethod, op)
	}
}

// Count returns the number of documents the request matches.
func (s *Service) Count(ctx context.Context, name string, req Request) (int, error) {
	m, err := s.model(name)
	if err != nil {
		return 0, err
	}
	sc, err := s.compose(m.Scoped(), req)
	if err != nil {
		return 0, err
	}
	return sc.Count(ctx)
}

// Scan streams every match to fn. Batches default to the configured scan
// batch size and cursor lifetime; the request may override both.
func (s *Service) Scan(
	ctx context.Context, name string, req Request, fn func(*vecscope.Result[vecscope.Document]) error,
) error {
	m, err := s.model(name)
	if err != nil {
		return err
	}
	start := m.Scoped()
	defaults := spec.Params{}
	if s.limits.ScanBatchSize > 0 {
		defaults[spec.ParamSize] = s.limits.ScanBatchSize
	}
	if s.limits.Scroll > 0 {
		defaults[spec.ParamScroll] = s.limits.Scroll.String()
	}
	sc, err := s.compose(start.Params(defaults), req)
	if err != nil {
		return err
	}
	// a configured batch size above max_size stays allowed
	if err := checkSize(sc, max(s.limits.MaxSize, s.limits.ScanBatchSize)); err != nil {
		return err
	}
	return sc.ScanAll(ctx, fn)
}

// EnsureIndexes creates missing search indexes and returns the models whose
// index was created.
func (s *Service) EnsureIndexes(ctx context.Context) ([]string, error) {
	var created []string
	for _, name := range s.names {
		ok, err := s.models[name].Ensure(ctx)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, name)
		}
	}
	return created, nil
}

// CheckIndexes fails when a served model has no search index.
func (s *Service) CheckIndexes(ctx context.Context) error {
	for _, name := range s.names {
		ok, err := s.models[name].IndexExists(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("model %s: %w", name, db.ErrIndexNotFound)
		}
	}
	return nil
}

func (s *Service) model(name string) (*model, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModel, name)
	}
	return m, nil
}

func (s *Service) compose(sc vecscope.Scope[vecscope.Document], req Request) (vecscope.Scope[vecscope.Document], error) {
	for _, a := range req.Apply {
		next, err := sc.Apply(a.Name, a.Args...)
		if err != nil {
			return sc, err
		}
		sc = next
	}
	return sc.Merge(req.Fragment), nil
}

// checkSize rejects a page or batch size above limit; limit <= 0 disables it.
func checkSize(sc vecscope.Scope[vecscope.Document], limit int) error {
	if limit <= 0 {
		return nil
	}
	n, ok, err := sc.Spec().ParamValues().Size()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if ok && n > limit {
		return fmt.Errorf("%w: size %d exceeds %d", domain.ErrInvalidParams, n, limit)
	}
	return nil
}
