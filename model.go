package vecscope

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	domcol "github.com/kailas-cloud/vecscope/internal/domain/collection"
	domdoc "github.com/kailas-cloud/vecscope/internal/domain/document"
	"github.com/kailas-cloud/vecscope/internal/domain/scope"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// Model binds the Go type T to a collection and owns its named scopes.
// Register scopes while defining the model; afterwards a Model is safe for
// concurrent use.
type Model[T any] struct {
	name      string
	client    *Client
	meta      *schemaMeta
	base      spec.Fragment
	extra     []IndexField
	templates Templates
	scopes    *scope.Registry[Scope[T]]
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	base         spec.Fragment
	extra        []IndexField
	templates    Templates
	hasTemplates bool
}

// WithBaseFragment seeds every scope of the model with f.
func WithBaseFragment(f Fragment) ModelOption {
	return func(c *modelConfig) {
		c.base = f
	}
}

// WithIndexFields adds indexed fields the struct tags do not declare.
func WithIndexFields(fields ...IndexField) ModelOption {
	return func(c *modelConfig) {
		c.extra = append(c.extra, fields...)
	}
}

// WithModelTemplates overrides the client's template collaborator for this
// model. Pass nil to disable templates.
func WithModelTemplates(t Templates) ModelOption {
	return func(c *modelConfig) {
		c.templates = t
		c.hasTemplates = true
	}
}

// NewModel creates a model over the named collection. T must be a struct
// with vecscope tags. The schema is parsed once and cached.
func NewModel[T any](client *Client, name string, opts ...ModelOption) (*Model[T], error) {
	if err := domcol.ValidateName(name); err != nil {
		return nil, fmt.Errorf("new model %q: %w", name, err)
	}
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new model %q: %w", name, err)
	}

	cfg := &modelConfig{templates: client.templates}
	for _, o := range opts {
		o(cfg)
	}

	reserved := scope.MethodNames(reflect.TypeFor[*Model[T]](), reflect.TypeFor[Scope[T]]())
	return &Model[T]{
		name:      name,
		client:    client,
		meta:      meta,
		base:      cfg.base,
		extra:     cfg.extra,
		templates: cfg.templates,
		scopes:    scope.NewRegistry[Scope[T]](reserved...),
	}, nil
}

// Name returns the collection name.
func (m *Model[T]) Name() string { return m.name }

// Scope registers a named scope. producer is a Scope[T], a
// func(args ...any) Scope[T] or a ScopeFunc. Names that collide with a
// method of Model or Scope (case and underscores ignored) are rejected with
// ErrScopeCollision; a rejected registration leaves the model unchanged.
func (m *Model[T]) Scope(name string, producer any) error {
	if err := m.scopes.Register(name, producer); err != nil {
		return fmt.Errorf("model %s: %w", m.name, err)
	}
	m.client.logger.Debug("scope registered", zap.String("model", m.name), zap.String("scope", name))
	return nil
}

// Call invokes the named scope.
func (m *Model[T]) Call(name string, args ...any) (Scope[T], error) {
	s, err := m.scopes.Produce(name, args...)
	if err != nil {
		return Scope[T]{}, fmt.Errorf("model %s: %w", m.name, err)
	}
	if s.model == nil {
		s = Scope[T]{model: m, spec: s.spec}
	}
	return s, nil
}

// Scopes lists registered scope names in registration order.
func (m *Model[T]) Scopes() []string { return m.scopes.Names() }

// Scoped returns a fresh scope seeded with the model's base fragment.
func (m *Model[T]) Scoped() Scope[T] {
	return Scope[T]{model: m, spec: spec.New(m.base)}
}

// Unscoped returns an empty scope bound to the model, without the base
// fragment. Use it to build scopes meant to be merged into Scoped() ones.
func (m *Model[T]) Unscoped() Scope[T] {
	return Scope[T]{model: m}
}

// Apply is Scoped().Apply(name, args...).
func (m *Model[T]) Apply(name string, args ...any) (Scope[T], error) {
	return m.Scoped().Apply(name, args...)
}

// Find is Scoped().Find(ctx, id, vars...).
func (m *Model[T]) Find(ctx context.Context, id string, vars ...Vars) (Found[T], error) {
	return m.Scoped().Find(ctx, id, vars...)
}

// FindMany is Scoped().FindMany(ctx, ids, vars...).
func (m *Model[T]) FindMany(ctx context.Context, ids []string, vars ...Vars) (*Result[T], error) {
	return m.Scoped().FindMany(ctx, ids, vars...)
}

// collection returns the indexed schema: struct-tag fields plus WithIndexFields.
func (m *Model[T]) collection() (domcol.Collection, error) {
	fields := append([]domcol.Field(nil), m.meta.indexed...)
	for _, f := range m.extra {
		fields = append(fields, domcol.Field{Name: f.Name, Type: f.Type, Sortable: f.Sortable})
	}
	col, err := domcol.New(m.name, fields...)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("model %s: %w", m.name, err)
	}
	return col, nil
}

// Ensure creates the search index unless it exists. Returns true if created.
func (m *Model[T]) Ensure(ctx context.Context) (bool, error) {
	col, err := m.collection()
	if err != nil {
		return false, err
	}
	created, err := m.client.collections.Ensure(ctx, col)
	if err != nil {
		return false, fmt.Errorf("ensure %q: %w", m.name, err)
	}
	if created {
		m.client.logger.Info("index created", zap.String("model", m.name))
	}
	return created, nil
}

// IndexExists reports whether the search index exists.
func (m *Model[T]) IndexExists(ctx context.Context) (bool, error) {
	ok, err := m.client.collections.Exists(ctx, m.name)
	if err != nil {
		return false, fmt.Errorf("index exists %q: %w", m.name, err)
	}
	return ok, nil
}

// DropIndex removes the search index. Stored documents are kept.
func (m *Model[T]) DropIndex(ctx context.Context) error {
	if err := m.client.collections.Drop(ctx, m.name); err != nil {
		return fmt.Errorf("drop index %q: %w", m.name, err)
	}
	return nil
}

// Upsert stores items in one pipelined round-trip.
func (m *Model[T]) Upsert(ctx context.Context, items ...T) error {
	docs := make([]domdoc.Document, len(items))
	for i, item := range items {
		doc, err := m.meta.toDocument(item)
		if err != nil {
			return fmt.Errorf("upsert item %d: %w", i, err)
		}
		docs[i] = doc
	}
	if err := m.client.documents.Upsert(ctx, m.name, docs...); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Delete removes documents by id. Ids that do not exist are ignored.
func (m *Model[T]) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 || slices.Contains(ids, "") {
		return fmt.Errorf("delete: %w: id", ErrEmptyArgument)
	}
	if _, err := m.client.documents.Delete(ctx, m.name, ids...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
